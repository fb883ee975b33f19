package engine

import (
	"hearts-platform/backend/internal/hearts"
)

// GameOverScore is the total that ends the game once any player
// reaches it after a round.
const GameOverScore = 100

// CompleteTrick scores a full trick: the highest lead-suit card wins,
// the winner banks the trick's points and leads the next trick. The
// trick and lead suit are cleared.
func (s *State) CompleteTrick() (winnerID string, points int, err error) {
	played := make([]hearts.Card, 0, len(s.CurrentTrick))
	for _, entry := range s.CurrentTrick {
		card, err := hearts.Parse(entry.Card)
		if err != nil {
			return "", 0, err
		}
		played = append(played, card)
	}

	winnerCard, err := hearts.TrickWinner(played, s.LeadSuit)
	if err != nil {
		return "", 0, err
	}

	winnerCode := winnerCard.String()
	for _, entry := range s.CurrentTrick {
		if entry.Card == winnerCode {
			winnerID = entry.UserID
			break
		}
	}

	points = hearts.TrickPoints(played)
	s.RoundScores[winnerID] += points

	s.CurrentTrick = []TrickEntry{}
	s.LeadSuit = ""
	s.TurnUserID = winnerID
	s.TrickStarterID = winnerID

	return winnerID, points, nil
}

// RoundDeltas converts the round's trick scores into the deltas added
// to each player's running total. Taking all 26 points shoots the
// moon: the shooter banks 0 and each opponent banks 26.
func (s *State) RoundDeltas() map[string]int {
	shooterID := ""
	for userID, score := range s.RoundScores {
		if score == hearts.TotalPoints {
			shooterID = userID
			break
		}
	}

	deltas := make(map[string]int, len(s.RoundScores))
	for userID, score := range s.RoundScores {
		if shooterID == "" {
			deltas[userID] = score
		} else if userID == shooterID {
			deltas[userID] = 0
		} else {
			deltas[userID] = hearts.TotalPoints
		}
	}
	return deltas
}

// GameWinner decides whether the game is over given each player's
// total score after a round. The game ends once any total reaches
// GameOverScore; the winner is the lowest total, ties broken by the
// lowest seat number.
func GameWinner(players []SeatedUser, totals map[string]int) (over bool, winnerID string) {
	for _, total := range totals {
		if total >= GameOverScore {
			over = true
			break
		}
	}
	if !over {
		return false, ""
	}

	bestSeat := 0
	bestScore := 0
	for _, p := range players {
		total := totals[p.UserID]
		if winnerID == "" || total < bestScore || (total == bestScore && p.Seat < bestSeat) {
			winnerID = p.UserID
			bestScore = total
			bestSeat = p.Seat
		}
	}
	return true, winnerID
}
