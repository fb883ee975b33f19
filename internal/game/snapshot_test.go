package game

import (
	"encoding/json"
	"testing"
	"time"

	"hearts-platform/backend/internal/engine"
	"hearts-platform/backend/internal/models"
)

func testGame() *models.Game {
	users := []models.User{
		{ID: "u1", Username: "alice"},
		{ID: "u2", Username: "bob"},
		{ID: "u3", Username: "carol"},
		{ID: "u4", Username: "dave"},
	}
	game := &models.Game{
		ID:        "g1",
		Status:    models.StatusInProgress,
		CreatedAt: time.Now(),
	}
	for i, u := range users {
		game.Players = append(game.Players, models.GamePlayer{
			GameID:     game.ID,
			UserID:     u.ID,
			SeatNumber: i + 1,
			TotalScore: i * 10,
			User:       u,
		})
	}
	return game
}

func testState() *engine.State {
	return &engine.State{
		RoundNumber:   2,
		Phase:         engine.PhasePlaying,
		PassDirection: engine.PassRight,
		Hands: map[string][]string{
			"u1": {"2♣", "Q♠", "A♥"},
			"u2": {"3♣", "4♣"},
			"u3": {"5♦"},
			"u4": {"6♦", "7♦", "8♦"},
		},
		PassedCards: map[string][]string{},
		CurrentTrick: []engine.TrickEntry{
			{UserID: "u2", Card: "3♣"},
		},
		LeadSuit:       "Clubs",
		TurnUserID:     "u3",
		TrickStarterID: "u2",
		RoundScores:    map[string]int{"u1": 0, "u2": 13, "u3": 0, "u4": 1},
		HeartsBroken:   true,
	}
}

func TestSanitizedStateMasksOtherHands(t *testing.T) {
	game := testGame()
	state := testState()

	view := sanitizedState(game, state, "u1")

	hands, ok := view["hands"].(map[string]interface{})
	if !ok {
		t.Fatalf("hands has type %T", view["hands"])
	}
	own, ok := hands["u1"].([]string)
	if !ok {
		t.Fatalf("own hand has type %T", hands["u1"])
	}
	if len(own) != 3 || own[1] != "Q♠" {
		t.Errorf("own hand = %v", own)
	}
	for _, other := range []string{"u2", "u3", "u4"} {
		count, ok := hands[other].(int)
		if !ok {
			t.Fatalf("hand of %s has type %T", other, hands[other])
		}
		if count != len(state.Hands[other]) {
			t.Errorf("count for %s = %d, want %d", other, count, len(state.Hands[other]))
		}
	}
}

func TestSanitizedStateCarriesTableFields(t *testing.T) {
	view := sanitizedState(testGame(), testState(), "u2")

	if view["round_number"] != 2 {
		t.Errorf("round_number = %v", view["round_number"])
	}
	if view["phase"] != "playing" {
		t.Errorf("phase = %v", view["phase"])
	}
	if view["lead_suit"] != "Clubs" {
		t.Errorf("lead_suit = %v", view["lead_suit"])
	}
	if view["turn_user_id"] != "u3" {
		t.Errorf("turn_user_id = %v", view["turn_user_id"])
	}
	if view["hearts_broken"] != true {
		t.Errorf("hearts_broken = %v", view["hearts_broken"])
	}
	players, ok := view["players"].([]map[string]interface{})
	if !ok || len(players) != 4 {
		t.Fatalf("players = %v", view["players"])
	}
	if players[1]["card_count"] != 2 {
		t.Errorf("card_count for seat 2 = %v", players[1]["card_count"])
	}
}

func TestSanitizedStateNilsEmptyTurnAndSuit(t *testing.T) {
	state := testState()
	state.LeadSuit = ""
	state.TurnUserID = ""

	view := sanitizedState(testGame(), state, "u1")
	if view["lead_suit"] != nil {
		t.Errorf("lead_suit = %v, want nil", view["lead_suit"])
	}
	if view["turn_user_id"] != nil {
		t.Errorf("turn_user_id = %v, want nil", view["turn_user_id"])
	}
}

func TestGameDataIncludesWinnerAndRounds(t *testing.T) {
	game := testGame()
	game.Status = models.StatusFinished
	winnerID := "u2"
	game.WinnerID = &winnerID
	game.Winner = &models.User{ID: "u2", Username: "bob"}
	game.Rounds = []models.Round{
		{ID: 1, GameID: game.ID, RoundNumber: 1, Scores: []models.RoundScore{
			{RoundID: 1, UserID: "u1", Score: 5},
			{RoundID: 1, UserID: "u2", Score: 21},
		}},
	}

	data := gameData(game, nil)

	winner, ok := data["winner"].(map[string]interface{})
	if !ok {
		t.Fatalf("winner = %v", data["winner"])
	}
	if winner["username"] != "bob" {
		t.Errorf("winner username = %v", winner["username"])
	}
	rounds, ok := data["rounds"].([]map[string]interface{})
	if !ok || len(rounds) != 1 {
		t.Fatalf("rounds = %v", data["rounds"])
	}
	scores, ok := rounds[0]["scores"].([]map[string]interface{})
	if !ok || len(scores) != 2 {
		t.Fatalf("scores = %v", rounds[0]["scores"])
	}

	players, ok := data["players"].([]map[string]interface{})
	if !ok || len(players) != 4 {
		t.Fatalf("players = %v", data["players"])
	}
	// Without session state no hand sizes are exposed.
	if _, present := players[0]["card_count"]; present {
		t.Error("card_count present without session state")
	}
}

func TestStateFramerPersonalizesHands(t *testing.T) {
	game := testGame()
	state := testState()
	framer := stateFramer("cards_passed_update", game, state, map[string]interface{}{
		"direction": "right",
	})

	for _, viewer := range []string{"u1", "u4"} {
		var frame map[string]interface{}
		if err := json.Unmarshal(framer(viewer), &frame); err != nil {
			t.Fatalf("frame for %s does not decode: %v", viewer, err)
		}
		if frame["event"] != "cards_passed_update" {
			t.Errorf("event = %v", frame["event"])
		}
		if frame["direction"] != "right" {
			t.Errorf("direction = %v", frame["direction"])
		}
		hands := frame["state"].(map[string]interface{})["hands"].(map[string]interface{})
		if _, ok := hands[viewer].([]interface{}); !ok {
			t.Errorf("viewer %s does not see own hand as a list: %v", viewer, hands[viewer])
		}
		for uid := range state.Hands {
			if uid == viewer {
				continue
			}
			if _, ok := hands[uid].(float64); !ok {
				t.Errorf("viewer %s sees %s's hand as %T", viewer, uid, hands[uid])
			}
		}
	}
}
