package engine

import (
	"sort"

	"hearts-platform/backend/internal/hearts"
)

// Phase is the per-round stage of a table.
type Phase string

const (
	PhasePassing Phase = "passing"
	PhasePlaying Phase = "playing"
)

// Direction is the three-card exchange rotation for a round.
type Direction string

const (
	PassLeft   Direction = "left"
	PassRight  Direction = "right"
	PassAcross Direction = "across"
	PassHold   Direction = "hold"
)

// SeatedUser pairs a user with their 1-based seat number. Turn order
// and passing geometry both follow seat numbers.
type SeatedUser struct {
	UserID string
	Seat   int
}

// TrickEntry is one card on the table, in play order.
type TrickEntry struct {
	UserID string `json:"user_id"`
	Card   string `json:"card"`
}

// State is the full volatile record of an in-progress round. It is
// created at round start, mutated only by the session coordinator,
// and persisted between mutations in the session store.
type State struct {
	RoundNumber    int                 `json:"round_number"`
	Phase          Phase               `json:"phase"`
	Hands          map[string][]string `json:"hands"`
	PassedCards    map[string][]string `json:"passed_cards"`
	PassDirection  Direction           `json:"pass_direction"`
	CurrentTrick   []TrickEntry        `json:"current_trick"`
	LeadSuit       hearts.Suit         `json:"lead_suit"`
	TurnUserID     string              `json:"turn_user_id"`
	TrickStarterID string              `json:"trick_starter_id"`
	RoundScores    map[string]int      `json:"round_scores"`
	HeartsBroken   bool                `json:"hearts_broken"`
}

// Hand returns the user's current hand.
func (s *State) Hand(userID string) []string {
	return s.Hands[userID]
}

// RoundOver reports whether every hand has been played out.
func (s *State) RoundOver() bool {
	for _, hand := range s.Hands {
		if len(hand) > 0 {
			return false
		}
	}
	return true
}

// handContains reports whether the hand holds the given card code.
func handContains(hand []string, code string) bool {
	for _, c := range hand {
		if c == code {
			return true
		}
	}
	return false
}

// removeFromHand deletes the first occurrence of code from the hand.
func removeFromHand(hand []string, code string) []string {
	for i, c := range hand {
		if c == code {
			return append(hand[:i], hand[i+1:]...)
		}
	}
	return hand
}

// sortHand orders card codes by suit then rank so clients always see
// a stable hand layout. Unparseable codes sort after parseable ones.
func sortHand(hand []string) {
	sort.Slice(hand, func(i, j int) bool {
		a, errA := hearts.Parse(hand[i])
		b, errB := hearts.Parse(hand[j])
		if errA != nil || errB != nil {
			return errB != nil && errA == nil
		}
		return a.Less(b)
	})
}

// seatOf returns the seat number for a user, or 0 when absent.
func seatOf(players []SeatedUser, userID string) int {
	for _, p := range players {
		if p.UserID == userID {
			return p.Seat
		}
	}
	return 0
}

// userAtSeat returns the user seated at the given seat, or "".
func userAtSeat(players []SeatedUser, seat int) string {
	for _, p := range players {
		if p.Seat == seat {
			return p.UserID
		}
	}
	return ""
}
