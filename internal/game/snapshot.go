package game

import (
	"hearts-platform/backend/internal/engine"
	"hearts-platform/backend/internal/events"
	"hearts-platform/backend/internal/models"
)

// playersData builds the players array of a snapshot: user identity,
// seat, running total and, when session state exists, the hand size.
func playersData(game *models.Game, state *engine.State) []map[string]interface{} {
	players := make([]map[string]interface{}, 0, len(game.Players))
	for _, p := range game.Players {
		entry := map[string]interface{}{
			"user": map[string]interface{}{
				"id":       p.User.ID,
				"username": p.User.Username,
			},
			"seat_number": p.SeatNumber,
			"total_score": p.TotalScore,
		}
		if state != nil {
			entry["card_count"] = len(state.Hands[p.UserID])
		}
		players = append(players, entry)
	}
	return players
}

// gameData builds the full game snapshot shared by the REST surface
// and the player_update / game_starting frames.
func gameData(game *models.Game, state *engine.State) map[string]interface{} {
	data := map[string]interface{}{
		"id":         game.ID,
		"status":     game.Status,
		"created_at": game.CreatedAt,
		"players":    playersData(game, state),
	}

	if game.Winner != nil {
		data["winner"] = map[string]interface{}{
			"id":       game.Winner.ID,
			"username": game.Winner.Username,
		}
	}

	rounds := make([]map[string]interface{}, 0, len(game.Rounds))
	for _, round := range game.Rounds {
		scores := make([]map[string]interface{}, 0, len(round.Scores))
		for _, s := range round.Scores {
			scores = append(scores, map[string]interface{}{
				"user_id": s.UserID,
				"score":   s.Score,
			})
		}
		rounds = append(rounds, map[string]interface{}{
			"id":           round.ID,
			"round_number": round.RoundNumber,
			"scores":       scores,
		})
	}
	data["rounds"] = rounds

	return data
}

// sanitizedState renders session state for one recipient: their own
// hand as a card list, everyone else's as an integer count. Passed
// cards are never echoed back.
func sanitizedState(game *models.Game, state *engine.State, viewerID string) map[string]interface{} {
	hands := make(map[string]interface{}, len(state.Hands))
	for userID, hand := range state.Hands {
		if userID == viewerID {
			hands[userID] = hand
		} else {
			hands[userID] = len(hand)
		}
	}

	var leadSuit interface{}
	if state.LeadSuit != "" {
		leadSuit = string(state.LeadSuit)
	}
	var turnUserID interface{}
	if state.TurnUserID != "" {
		turnUserID = state.TurnUserID
	}

	return map[string]interface{}{
		"round_number":     state.RoundNumber,
		"phase":            string(state.Phase),
		"pass_direction":   string(state.PassDirection),
		"hands":            hands,
		"current_trick":    state.CurrentTrick,
		"lead_suit":        leadSuit,
		"turn_user_id":     turnUserID,
		"trick_starter_id": state.TrickStarterID,
		"round_scores":     state.RoundScores,
		"hearts_broken":    state.HeartsBroken,
		"players":          playersData(game, state),
	}
}

// stateFramer returns a per-recipient frame builder for broadcasts
// that carry session state.
func stateFramer(event string, game *models.Game, state *engine.State, extra map[string]interface{}) func(userID string) []byte {
	return func(userID string) []byte {
		frame := events.New(event)
		for key, value := range extra {
			frame.With(key, value)
		}
		frame.With("state", sanitizedState(game, state, userID))
		return frame.Marshal()
	}
}
