package engine

import (
	"errors"
	"fmt"

	"hearts-platform/backend/internal/hearts"
)

// Pass submission violations, also wire-visible.
var (
	ErrNotPassingPhase  = errors.New("Not in the passing phase.")
	ErrAlreadyPassed    = errors.New("You have already passed cards this round.")
	ErrPassCount        = errors.New("You must pass exactly 3 cards.")
	ErrPassDuplicate    = errors.New("Passed cards must be distinct.")
	ErrPassCardNotOwned = errors.New("Card not in hand.")
)

// NewRound deals a fresh shuffled deck into four sorted hands and
// builds the round's initial state. The holder of the 2 of clubs
// starts; on a hold round the passing phase is skipped and play
// begins immediately.
func NewRound(roundNumber int, players []SeatedUser) (*State, error) {
	if len(players) != hearts.NumPlayers {
		return nil, fmt.Errorf("need %d seated players, have %d", hearts.NumPlayers, len(players))
	}

	deck := hearts.NewDeck()
	deck.Shuffle()
	dealt, err := deck.Deal()
	if err != nil {
		return nil, err
	}

	state := &State{
		RoundNumber:   roundNumber,
		Hands:         make(map[string][]string, hearts.NumPlayers),
		PassedCards:   make(map[string][]string, hearts.NumPlayers),
		PassDirection: PassDirectionFor(roundNumber),
		CurrentTrick:  []TrickEntry{},
		RoundScores:   make(map[string]int, hearts.NumPlayers),
	}

	// Hands are dealt in seat order, seats 1..4.
	ordered := make([]SeatedUser, len(players))
	copy(ordered, players)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Seat < ordered[i].Seat {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	for i, p := range ordered {
		hand := make([]string, 0, hearts.CardsPerPlayer)
		for _, card := range dealt[i] {
			hand = append(hand, card.String())
		}
		sortHand(hand)
		state.Hands[p.UserID] = hand
		state.PassedCards[p.UserID] = []string{}
		state.RoundScores[p.UserID] = 0
	}

	starter := state.holderOfTwoOfClubs()
	state.TurnUserID = starter
	state.TrickStarterID = starter

	if state.PassDirection == PassHold {
		state.Phase = PhasePlaying
	} else {
		state.Phase = PhasePassing
	}

	return state, nil
}

// RecordPass stores a player's three-card pass submission and removes
// the cards from their hand. A player passes at most once per round.
func (s *State) RecordPass(userID string, cards []string) error {
	if s.Phase != PhasePassing {
		return ErrNotPassingPhase
	}
	if len(s.PassedCards[userID]) > 0 {
		return ErrAlreadyPassed
	}
	if len(cards) != 3 {
		return ErrPassCount
	}

	seen := make(map[string]bool, 3)
	for _, code := range cards {
		if seen[code] {
			return ErrPassDuplicate
		}
		seen[code] = true
		if !handContains(s.Hands[userID], code) {
			return ErrPassCardNotOwned
		}
	}

	for _, code := range cards {
		s.Hands[userID] = removeFromHand(s.Hands[userID], code)
	}
	s.PassedCards[userID] = append([]string{}, cards...)
	return nil
}

// AllPassed reports whether every seat has submitted its three cards.
func (s *State) AllPassed() bool {
	if len(s.PassedCards) < hearts.NumPlayers {
		return false
	}
	for _, cards := range s.PassedCards {
		if len(cards) != 3 {
			return false
		}
	}
	return true
}

// ResolvePasses routes every submission to its recipient under the
// round's direction, re-sorts the hands, and opens play with the
// holder of the 2 of clubs, which may have changed hands.
func (s *State) ResolvePasses(players []SeatedUser) {
	for senderID, cards := range s.PassedCards {
		recipientSeat := PassRecipientSeat(seatOf(players, senderID), s.PassDirection)
		recipientID := userAtSeat(players, recipientSeat)
		s.Hands[recipientID] = append(s.Hands[recipientID], cards...)
	}
	for userID := range s.Hands {
		sortHand(s.Hands[userID])
	}

	s.Phase = PhasePlaying
	starter := s.holderOfTwoOfClubs()
	s.TurnUserID = starter
	s.TrickStarterID = starter
}

func (s *State) holderOfTwoOfClubs() string {
	twoOfClubs := hearts.TwoOfClubs.String()
	for userID, hand := range s.Hands {
		if handContains(hand, twoOfClubs) {
			return userID
		}
	}
	return ""
}
