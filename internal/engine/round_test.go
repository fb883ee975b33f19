package engine

import (
	"errors"
	"testing"

	"hearts-platform/backend/internal/hearts"
)

func TestNewRoundDealsThirteenEach(t *testing.T) {
	state, starter := dealtRoundState(t, 1)

	if len(state.Hands) != hearts.NumPlayers {
		t.Fatalf("dealt %d hands, want %d", len(state.Hands), hearts.NumPlayers)
	}
	for userID, hand := range state.Hands {
		if len(hand) != hearts.CardsPerPlayer {
			t.Errorf("hand of %s has %d cards, want %d", userID, len(hand), hearts.CardsPerPlayer)
		}
	}
	if !handContains(state.Hands[starter], "2♣") {
		t.Errorf("starter %s does not hold 2♣", starter)
	}
	if state.Phase != PhasePassing {
		t.Errorf("round 1 phase = %s, want passing", state.Phase)
	}
	if state.PassDirection != PassLeft {
		t.Errorf("round 1 direction = %s, want left", state.PassDirection)
	}
	if state.HeartsBroken {
		t.Error("hearts must start unbroken")
	}
	for userID, score := range state.RoundScores {
		if score != 0 {
			t.Errorf("round score of %s = %d, want 0", userID, score)
		}
	}
}

func TestNewRoundHoldSkipsPassing(t *testing.T) {
	state, starter := dealtRoundState(t, 4)

	if state.PassDirection != PassHold {
		t.Fatalf("round 4 direction = %s, want hold", state.PassDirection)
	}
	if state.Phase != PhasePlaying {
		t.Errorf("hold round phase = %s, want playing", state.Phase)
	}
	if state.TurnUserID != starter || state.TrickStarterID != starter {
		t.Error("2♣ holder must be on turn immediately on a hold round")
	}
}

func TestRecordPassValidation(t *testing.T) {
	state, _ := dealtRoundState(t, 1)
	userID := testPlayers[0].UserID
	hand := state.Hands[userID]

	tests := []struct {
		name  string
		cards []string
		want  error
	}{
		{"too few", hand[:2], ErrPassCount},
		{"too many", hand[:4], ErrPassCount},
		{"duplicate", []string{hand[0], hand[0], hand[1]}, ErrPassDuplicate},
		{"not owned", []string{hand[0], hand[1], foreignCard(hand)}, ErrPassCardNotOwned},
	}
	for _, tt := range tests {
		if err := state.RecordPass(userID, tt.cards); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}

	if err := state.RecordPass(userID, hand[:3]); err != nil {
		t.Fatalf("valid pass rejected: %v", err)
	}
	if err := state.RecordPass(userID, state.Hands[userID][:3]); !errors.Is(err, ErrAlreadyPassed) {
		t.Errorf("second pass: got %v, want ErrAlreadyPassed", err)
	}
	if len(state.Hands[userID]) != hearts.CardsPerPlayer-3 {
		t.Errorf("hand has %d cards after pass, want %d", len(state.Hands[userID]), hearts.CardsPerPlayer-3)
	}
}

func TestRecordPassWrongPhase(t *testing.T) {
	state, _ := dealtRoundState(t, 4)
	userID := testPlayers[0].UserID
	if err := state.RecordPass(userID, state.Hands[userID][:3]); !errors.Is(err, ErrNotPassingPhase) {
		t.Errorf("got %v, want ErrNotPassingPhase", err)
	}
}

func TestResolvePassesRoutesLeft(t *testing.T) {
	state, _ := dealtRoundState(t, 1)

	passed := make(map[string][]string, hearts.NumPlayers)
	for _, p := range testPlayers {
		cards := append([]string{}, state.Hands[p.UserID][:3]...)
		if err := state.RecordPass(p.UserID, cards); err != nil {
			t.Fatalf("RecordPass(%s) failed: %v", p.UserID, err)
		}
		passed[p.UserID] = cards
	}
	if !state.AllPassed() {
		t.Fatal("AllPassed should be true after four submissions")
	}

	state.ResolvePasses(testPlayers)

	// Left pass: seat 1 -> seat 2, 2 -> 3, 3 -> 4, 4 -> 1.
	recipients := map[string]string{"u1": "u2", "u2": "u3", "u3": "u4", "u4": "u1"}
	for sender, recipient := range recipients {
		for _, code := range passed[sender] {
			if !handContains(state.Hands[recipient], code) {
				t.Errorf("card %s passed by %s not in %s's hand", code, sender, recipient)
			}
		}
	}

	for userID, hand := range state.Hands {
		if len(hand) != hearts.CardsPerPlayer {
			t.Errorf("hand of %s has %d cards after resolution, want %d", userID, len(hand), hearts.CardsPerPlayer)
		}
	}

	if state.Phase != PhasePlaying {
		t.Errorf("phase = %s after resolution, want playing", state.Phase)
	}
	if !handContains(state.Hands[state.TurnUserID], "2♣") {
		t.Error("turn must be with the holder of 2♣ after resolution")
	}
	if state.TrickStarterID != state.TurnUserID {
		t.Error("trick starter must match the opening turn")
	}
}

// foreignCard returns a card code guaranteed not to be in the hand.
func foreignCard(hand []string) string {
	for _, suit := range hearts.AllSuits {
		for _, rank := range hearts.AllRanks {
			code := hearts.Card{Rank: rank, Suit: suit}.String()
			if !handContains(hand, code) {
				return code
			}
		}
	}
	return ""
}
