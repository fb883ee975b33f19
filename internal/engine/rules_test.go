package engine

import (
	"errors"
	"testing"

	"hearts-platform/backend/internal/hearts"
)

var testPlayers = []SeatedUser{
	{UserID: "u1", Seat: 1},
	{UserID: "u2", Seat: 2},
	{UserID: "u3", Seat: 3},
	{UserID: "u4", Seat: 4},
}

// playingState builds a mid-round state where u2 is on turn with a
// small hand. Hands are short on purpose so tests are past the
// first-trick rules unless they say otherwise.
func playingState() *State {
	return &State{
		RoundNumber: 1,
		Phase:       PhasePlaying,
		Hands: map[string][]string{
			"u1": {"5♦", "9♠"},
			"u2": {"K♣", "A♥", "3♦"},
			"u3": {"7♣", "2♥"},
			"u4": {"J♠", "4♣"},
		},
		PassedCards:    map[string][]string{},
		PassDirection:  PassLeft,
		CurrentTrick:   []TrickEntry{},
		TurnUserID:     "u2",
		TrickStarterID: "u2",
		RoundScores:    map[string]int{"u1": 0, "u2": 0, "u3": 0, "u4": 0},
	}
}

func TestPassDirectionCycle(t *testing.T) {
	tests := []struct {
		round int
		want  Direction
	}{
		{1, PassLeft}, {2, PassRight}, {3, PassAcross}, {4, PassHold},
		{5, PassLeft}, {8, PassHold}, {9, PassLeft},
	}
	for _, tt := range tests {
		if got := PassDirectionFor(tt.round); got != tt.want {
			t.Errorf("PassDirectionFor(%d) = %s, want %s", tt.round, got, tt.want)
		}
	}
}

func TestPassRecipientSeat(t *testing.T) {
	tests := []struct {
		seat      int
		direction Direction
		want      int
	}{
		{1, PassLeft, 2}, {2, PassLeft, 3}, {3, PassLeft, 4}, {4, PassLeft, 1},
		{1, PassRight, 4}, {2, PassRight, 1}, {3, PassRight, 2}, {4, PassRight, 3},
		{1, PassAcross, 3}, {2, PassAcross, 4}, {3, PassAcross, 1}, {4, PassAcross, 2},
	}
	for _, tt := range tests {
		if got := PassRecipientSeat(tt.seat, tt.direction); got != tt.want {
			t.Errorf("PassRecipientSeat(%d, %s) = %d, want %d", tt.seat, tt.direction, got, tt.want)
		}
	}
}

func TestValidatePlayWrongPhase(t *testing.T) {
	state := playingState()
	state.Phase = PhasePassing
	if err := state.ValidatePlay(testPlayers, "u2", "K♣"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase, got %v", err)
	}
}

func TestValidatePlayNotYourTurn(t *testing.T) {
	state := playingState()
	if err := state.ValidatePlay(testPlayers, "u1", "5♦"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestValidatePlayNotInHand(t *testing.T) {
	state := playingState()
	if err := state.ValidatePlay(testPlayers, "u2", "2♣"); !errors.Is(err, ErrNotInHand) {
		t.Errorf("expected ErrNotInHand, got %v", err)
	}
}

func TestValidatePlayMustLeadTwoOfClubs(t *testing.T) {
	state, starter := dealtRoundState(t, 1)
	state.Phase = PhasePlaying

	for _, code := range state.Hands[starter] {
		if code == "2♣" {
			continue
		}
		if err := state.ValidatePlay(testPlayers, starter, code); !errors.Is(err, ErrMustLeadTwoOfClubs) {
			t.Errorf("leading %s on first trick: got %v, want ErrMustLeadTwoOfClubs", code, err)
		}
	}
	if err := state.ValidatePlay(testPlayers, starter, "2♣"); err != nil {
		t.Errorf("leading 2♣ on first trick should be valid, got %v", err)
	}
}

func TestValidatePlayHeartsNotBroken(t *testing.T) {
	state := playingState()
	if err := state.ValidatePlay(testPlayers, "u2", "A♥"); !errors.Is(err, ErrHeartsNotBroken) {
		t.Errorf("expected ErrHeartsNotBroken, got %v", err)
	}

	state.HeartsBroken = true
	if err := state.ValidatePlay(testPlayers, "u2", "A♥"); err != nil {
		t.Errorf("leading hearts after break should be valid, got %v", err)
	}
}

func TestValidatePlayAllHeartsMayLead(t *testing.T) {
	state := playingState()
	state.Hands["u2"] = []string{"A♥", "4♥"}
	if err := state.ValidatePlay(testPlayers, "u2", "A♥"); err != nil {
		t.Errorf("all-hearts hand must be allowed to lead hearts, got %v", err)
	}
}

func TestValidatePlayMustFollowSuit(t *testing.T) {
	state := playingState()
	state.CurrentTrick = []TrickEntry{{UserID: "u1", Card: "5♦"}}
	state.LeadSuit = hearts.Diamonds

	err := state.ValidatePlay(testPlayers, "u2", "K♣")
	if !errors.Is(err, ErrMustFollowSuit) {
		t.Errorf("expected ErrMustFollowSuit, got %v", err)
	}
	if got := err.Error(); got != "Must follow suit (Diamonds)." {
		t.Errorf("message = %q, want the lead suit named", got)
	}
	if err := state.ValidatePlay(testPlayers, "u2", "3♦"); err != nil {
		t.Errorf("following suit should be valid, got %v", err)
	}
}

func TestValidatePlayNoPointsFirstTrick(t *testing.T) {
	state, starter := dealtRoundState(t, 1)
	state.Phase = PhasePlaying

	// Force a first-trick follow where the follower holds points and
	// safe cards. Thirteen cards marks the first trick.
	follower := nextAfter(starter)
	state.Hands[follower] = []string{"Q♠", "A♥", "3♦", "4♦", "5♦", "6♦", "7♦", "8♦", "9♦", "10♦", "J♦", "Q♦", "K♦"}
	state.CurrentTrick = []TrickEntry{{UserID: starter, Card: "2♣"}}
	state.LeadSuit = hearts.Clubs
	state.TurnUserID = follower

	if err := state.ValidatePlay(testPlayers, follower, "Q♠"); !errors.Is(err, ErrNoPointsFirstTrick) {
		t.Errorf("expected ErrNoPointsFirstTrick, got %v", err)
	}
	if err := state.ValidatePlay(testPlayers, follower, "3♦"); err != nil {
		t.Errorf("off-suit zero-point card should be valid with no clubs held, got %v", err)
	}

	// A hand of nothing but point cards is exempt.
	state.Hands[follower] = []string{"Q♠", "A♥", "2♥", "3♥", "4♥", "5♥", "6♥", "7♥", "8♥", "9♥", "10♥", "J♥", "K♥"}
	if err := state.ValidatePlay(testPlayers, follower, "A♥"); err != nil {
		t.Errorf("all-point hand must be allowed to play points, got %v", err)
	}
}

func TestApplyPlayAdvancesTurnBySeat(t *testing.T) {
	state := playingState()

	complete, err := state.ApplyPlay(testPlayers, "u2", "K♣")
	if err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}
	if complete {
		t.Fatal("trick should not be complete after one card")
	}
	if state.TurnUserID != "u3" {
		t.Errorf("turn = %s, want u3", state.TurnUserID)
	}
	if handContains(state.Hands["u2"], "K♣") {
		t.Error("played card still in hand")
	}
	if len(state.CurrentTrick) != 1 || state.CurrentTrick[0].Card != "K♣" {
		t.Errorf("current trick = %v, want single K♣ entry", state.CurrentTrick)
	}
	if state.LeadSuit != hearts.Clubs {
		t.Errorf("lead suit = %s, want Clubs", state.LeadSuit)
	}
	if state.HeartsBroken {
		t.Error("K♣ must not break hearts")
	}
}

func TestApplyPlayBreaksHearts(t *testing.T) {
	state := playingState()
	state.HeartsBroken = false
	state.CurrentTrick = []TrickEntry{{UserID: "u1", Card: "5♦"}}
	state.LeadSuit = hearts.Diamonds

	if _, err := state.ApplyPlay(testPlayers, "u2", "A♥"); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}
	if !state.HeartsBroken {
		t.Error("heart on the table must break hearts")
	}
}

func TestApplyPlayQueenOfSpadesBreaksHearts(t *testing.T) {
	state := playingState()
	state.Hands["u2"] = append(state.Hands["u2"], "Q♠")
	if _, err := state.ApplyPlay(testPlayers, "u2", "Q♠"); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}
	if !state.HeartsBroken {
		t.Error("Q♠ on the table must break hearts")
	}
}

func TestApplyPlayFourthCardCompletesTrick(t *testing.T) {
	state := playingState()
	state.CurrentTrick = []TrickEntry{
		{UserID: "u3", Card: "7♣"},
		{UserID: "u4", Card: "4♣"},
		{UserID: "u1", Card: "9♠"},
	}
	state.LeadSuit = hearts.Clubs

	complete, err := state.ApplyPlay(testPlayers, "u2", "K♣")
	if err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}
	if !complete {
		t.Fatal("fourth card must complete the trick")
	}
	if state.TurnUserID != "" {
		t.Errorf("turn = %q, want empty until the trick is scored", state.TurnUserID)
	}
}

func TestCompleteTrick(t *testing.T) {
	// Lead suit clubs, trick 2♣ K♣ A♥ 3♣: K♣ wins and banks 1 point.
	state := playingState()
	state.CurrentTrick = []TrickEntry{
		{UserID: "u1", Card: "2♣"},
		{UserID: "u2", Card: "K♣"},
		{UserID: "u3", Card: "A♥"},
		{UserID: "u4", Card: "3♣"},
	}
	state.LeadSuit = hearts.Clubs
	state.TurnUserID = ""

	winnerID, points, err := state.CompleteTrick()
	if err != nil {
		t.Fatalf("CompleteTrick failed: %v", err)
	}
	if winnerID != "u2" {
		t.Errorf("winner = %s, want u2", winnerID)
	}
	if points != 1 {
		t.Errorf("points = %d, want 1", points)
	}
	if state.RoundScores["u2"] != 1 {
		t.Errorf("winner round score = %d, want 1", state.RoundScores["u2"])
	}
	if len(state.CurrentTrick) != 0 || state.LeadSuit != "" {
		t.Error("trick and lead suit must be cleared")
	}
	if state.TurnUserID != "u2" || state.TrickStarterID != "u2" {
		t.Error("winner must lead the next trick")
	}
}

func nextAfter(userID string) string {
	seat := seatOf(testPlayers, userID)
	return userAtSeat(testPlayers, (seat%4)+1)
}

// dealtRoundState deals a fresh round and returns it with the 2♣
// holder's id.
func dealtRoundState(t *testing.T, roundNumber int) (*State, string) {
	t.Helper()
	state, err := NewRound(roundNumber, testPlayers)
	if err != nil {
		t.Fatalf("NewRound failed: %v", err)
	}
	starter := state.TurnUserID
	if starter == "" {
		t.Fatal("no starter set after deal")
	}
	return state, starter
}
