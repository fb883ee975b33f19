package game

import (
	"context"
	"log"
	"time"

	"hearts-platform/backend/internal/events"
	"hearts-platform/backend/internal/ws"
)

// HandleMessage dispatches one inbound frame from a connected player.
// Malformed frames and unknown event names are dropped.
func (c *Coordinator) HandleMessage(client *ws.Client, data []byte) {
	msg, ok := events.ParseInbound(data)
	if !ok {
		log.Printf("[GAME %s] Dropping malformed frame from %s", client.GameID, client.UserID)
		return
	}

	ctx := context.Background()
	switch msg.Event {
	case events.RequestInitialState:
		c.handleInitialState(ctx, client)
	case events.PassCards:
		c.handlePassCards(ctx, client, msg.Cards)
	case events.PlayCard:
		c.handlePlayCard(ctx, client, msg.Card)
	default:
		log.Printf("[GAME %s] Ignoring unknown event %q from %s", client.GameID, msg.Event, client.UserID)
	}
}

// handleInitialState replies to the sender alone with their sanitized
// view of the table. Before the first deal there is nothing to send.
func (c *Coordinator) handleInitialState(ctx context.Context, client *ws.Client) {
	game, err := c.repo.GetGame(client.GameID)
	if err != nil {
		log.Printf("[GAME %s] Failed to load game for initial state: %v", client.GameID, err)
		return
	}
	state, err := c.store.Load(ctx, client.GameID)
	if err != nil {
		log.Printf("[GAME %s] Failed to load state for initial state: %v", client.GameID, err)
		return
	}
	if state == nil {
		return
	}

	frame := events.New(events.InitialState).
		With("state", sanitizedState(game, state, client.UserID)).
		Marshal()
	c.registry.Send(client, frame)
}

// handlePassCards records one player's three-card pass. When the last
// submission arrives the passes are routed and play opens.
func (c *Coordinator) handlePassCards(ctx context.Context, client *ws.Client, cards []string) {
	err := c.withTableLock(ctx, client.GameID, func(ctx context.Context) error {
		state, err := c.loadState(ctx, client.GameID)
		if err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		game, err := c.loadGame(ctx, client.GameID)
		if err != nil {
			return err
		}

		if err := state.RecordPass(client.UserID, cards); err != nil {
			c.sendError(client, err)
			return nil
		}

		if !state.AllPassed() {
			return c.saveState(ctx, client.GameID, state)
		}

		state.ResolvePasses(seatedUsers(game))
		if err := c.saveState(ctx, client.GameID, state); err != nil {
			return err
		}

		log.Printf("[GAME %s] All passes in, 2♣ with %s", client.GameID, state.TurnUserID)
		c.registry.BroadcastFunc(client.GameID, stateFramer(events.CardsPassedUpdate, game, state, nil))
		c.broadcastYourTurn(client.GameID, state.TurnUserID)
		return nil
	})
	if err != nil {
		log.Printf("[GAME %s] Failed to handle pass from %s: %v", client.GameID, client.UserID, err)
	}
}

// handlePlayCard validates and commits one card. A completed trick is
// scored immediately; the post-trick advance happens after the pause,
// outside the lock.
func (c *Coordinator) handlePlayCard(ctx context.Context, client *ws.Client, code string) {
	trickComplete := false
	err := c.withTableLock(ctx, client.GameID, func(ctx context.Context) error {
		state, err := c.loadState(ctx, client.GameID)
		if err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		game, err := c.loadGame(ctx, client.GameID)
		if err != nil {
			return err
		}
		players := seatedUsers(game)

		if err := state.ValidatePlay(players, client.UserID, code); err != nil {
			c.sendError(client, err)
			return nil
		}
		complete, err := state.ApplyPlay(players, client.UserID, code)
		if err != nil {
			return err
		}
		if err := c.saveState(ctx, client.GameID, state); err != nil {
			return err
		}

		c.registry.BroadcastFunc(client.GameID, stateFramer(events.CardPlayed, game, state, map[string]interface{}{
			"player_id":     client.UserID,
			"card":          code,
			"current_trick": state.CurrentTrick,
		}))

		if !complete {
			c.broadcastYourTurn(client.GameID, state.TurnUserID)
			return nil
		}

		winnerID, points, err := state.CompleteTrick()
		if err != nil {
			return err
		}
		if err := c.saveState(ctx, client.GameID, state); err != nil {
			return err
		}

		log.Printf("[GAME %s] Trick won by %s for %d points", client.GameID, winnerID, points)
		c.registry.Broadcast(client.GameID, events.New(events.TrickEnd).
			With("winner_id", winnerID).
			With("winner_username", usernameOf(game, winnerID)).
			With("points", points).
			Marshal())
		trickComplete = true
		return nil
	})
	if err != nil {
		log.Printf("[GAME %s] Failed to handle play from %s: %v", client.GameID, client.UserID, err)
		return
	}
	if trickComplete {
		go c.afterTrick(client.GameID)
	}
}

// afterTrick runs once per completed trick: the table rests so clients
// can show the trick, then either the winner leads or the round is
// settled. The pause happens outside the table lock.
func (c *Coordinator) afterTrick(gameID string) {
	time.Sleep(c.trickPause)

	ctx := context.Background()
	err := c.withTableLock(ctx, gameID, func(ctx context.Context) error {
		state, err := c.loadState(ctx, gameID)
		if err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		if !state.RoundOver() {
			c.broadcastYourTurn(gameID, state.TurnUserID)
			return nil
		}
		return c.finishRound(ctx, gameID, state)
	})
	if err != nil {
		log.Printf("[GAME %s] Failed to advance after trick: %v", gameID, err)
	}
}

func (c *Coordinator) sendError(client *ws.Client, violation error) {
	log.Printf("[GAME %s] Rejected %s: %v", client.GameID, client.UserID, violation)
	c.registry.Send(client, events.ErrorFrame(violation.Error()).Marshal())
}
