package hearts

import "errors"

// ErrEmptyTrick is returned when asked for the winner of a trick with
// no cards in it.
var ErrEmptyTrick = errors.New("cannot determine winner of an empty trick")

// TrickWinner returns the winning card of a trick: the highest-value
// card among those that followed the lead suit. Off-suit cards can
// never win, however high they rank.
func TrickWinner(played []Card, leadSuit Suit) (Card, error) {
	if len(played) == 0 {
		return Card{}, ErrEmptyTrick
	}

	var winner Card
	found := false
	for _, card := range played {
		if card.Suit != leadSuit {
			continue
		}
		if !found || card.Value() > winner.Value() {
			winner = card
			found = true
		}
	}
	if !found {
		// The leader always matches the lead suit, so this only
		// happens when the caller passed a bogus lead suit.
		return played[0], nil
	}
	return winner, nil
}

// TrickPoints sums the penalty points carried by the trick.
func TrickPoints(played []Card) int {
	total := 0
	for _, card := range played {
		total += card.Points()
	}
	return total
}
