package engine

import (
	"errors"
	"fmt"

	"hearts-platform/backend/internal/hearts"
)

// Rule violations surfaced to the offending player. The messages are
// the wire-visible text of the private error frame.
var (
	ErrWrongPhase         = errors.New("Not in the playing phase.")
	ErrNotYourTurn        = errors.New("Not your turn.")
	ErrNotInHand          = errors.New("Card not in hand.")
	ErrMustLeadTwoOfClubs = errors.New("Must lead with 2 of Clubs.")
	ErrHeartsNotBroken    = errors.New("Hearts have not been broken.")
	ErrMustFollowSuit     = errors.New("Must follow suit")
	ErrNoPointsFirstTrick = errors.New("Cannot play point cards on the first trick.")
)

// PassDirectionFor returns the exchange direction for a 1-based round
// number, cycling left, right, across, hold.
func PassDirectionFor(roundNumber int) Direction {
	directions := []Direction{PassLeft, PassRight, PassAcross, PassHold}
	return directions[(roundNumber-1)%4]
}

// PassRecipientSeat maps a sender's seat to the seat receiving their
// three cards under the given direction.
func PassRecipientSeat(seat int, direction Direction) int {
	switch direction {
	case PassLeft:
		return (seat % 4) + 1
	case PassRight:
		return ((seat + 2) % 4) + 1
	case PassAcross:
		return ((seat + 1) % 4) + 1
	}
	return seat
}

// ValidatePlay checks a proposed card against the full rule set. The
// checks run in a fixed order and the first violated rule names the
// returned error. State is not modified.
func (s *State) ValidatePlay(players []SeatedUser, userID, code string) error {
	if s.Phase != PhasePlaying {
		return ErrWrongPhase
	}
	if s.TurnUserID != userID {
		return ErrNotYourTurn
	}

	hand := s.Hands[userID]
	if !handContains(hand, code) {
		return ErrNotInHand
	}

	card, err := hearts.Parse(code)
	if err != nil {
		return ErrNotInHand
	}

	leading := len(s.CurrentTrick) == 0
	firstTrick := len(hand) == hearts.CardsPerPlayer

	// The opening lead of every round is the 2 of clubs.
	if firstTrick && leading && card != hearts.TwoOfClubs {
		return ErrMustLeadTwoOfClubs
	}

	if leading && card.Suit == hearts.Hearts && !s.HeartsBroken && !allHearts(hand) {
		return ErrHeartsNotBroken
	}

	if !leading && card.Suit != s.LeadSuit && handHasSuit(hand, s.LeadSuit) {
		// The wire text names the suit the player must follow.
		return fmt.Errorf("%w (%s).", ErrMustFollowSuit, s.LeadSuit)
	}

	if firstTrick && card.Points() > 0 && !allPoints(hand) {
		return ErrNoPointsFirstTrick
	}

	return nil
}

// ApplyPlay commits a validated card to the table: removes it from
// the hand, appends it to the trick, sets the lead suit on a lead,
// breaks hearts when a point card lands, and advances the turn. It
// reports whether the play completed the trick.
func (s *State) ApplyPlay(players []SeatedUser, userID, code string) (trickComplete bool, err error) {
	card, err := hearts.Parse(code)
	if err != nil {
		return false, err
	}

	s.Hands[userID] = removeFromHand(s.Hands[userID], code)

	if len(s.CurrentTrick) == 0 {
		s.LeadSuit = card.Suit
	}
	s.CurrentTrick = append(s.CurrentTrick, TrickEntry{UserID: userID, Card: code})

	if card.Suit == hearts.Hearts || card == hearts.QueenOfSpades {
		s.HeartsBroken = true
	}

	if len(s.CurrentTrick) < hearts.NumPlayers {
		nextSeat := (seatOf(players, userID) % 4) + 1
		s.TurnUserID = userAtSeat(players, nextSeat)
		return false, nil
	}

	// Nobody's turn until the trick is scored.
	s.TurnUserID = ""
	return true, nil
}

func allHearts(hand []string) bool {
	for _, code := range hand {
		card, err := hearts.Parse(code)
		if err != nil || card.Suit != hearts.Hearts {
			return false
		}
	}
	return len(hand) > 0
}

func allPoints(hand []string) bool {
	for _, code := range hand {
		card, err := hearts.Parse(code)
		if err != nil || card.Points() == 0 {
			return false
		}
	}
	return len(hand) > 0
}

func handHasSuit(hand []string, suit hearts.Suit) bool {
	for _, code := range hand {
		if card, err := hearts.Parse(code); err == nil && card.Suit == suit {
			return true
		}
	}
	return false
}
