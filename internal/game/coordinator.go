package game

import (
	"context"
	"log"
	"time"

	"hearts-platform/backend/internal/engine"
	"hearts-platform/backend/internal/events"
	"hearts-platform/backend/internal/locks"
	"hearts-platform/backend/internal/models"
	"hearts-platform/backend/internal/repository"
	"hearts-platform/backend/internal/session"
	"hearts-platform/backend/internal/ws"
)

const (
	// trickPause lets players see the completed trick before it is
	// cleared from their screens.
	trickPause = 2500 * time.Millisecond
	// roundPause separates the round summary from the next deal.
	roundPause = 5 * time.Second
)

// Coordinator drives every table's state machine: it is the only
// mutator of session state, serializing each table behind its
// distributed lock, and fans events out through the connection
// registry. The repository is touched at lobby and round boundaries
// only.
type Coordinator struct {
	repo     *repository.Repository
	store    *session.Store
	registry *ws.Registry
	locks    *locks.Manager

	trickPause time.Duration
	roundPause time.Duration
}

func NewCoordinator(repo *repository.Repository, store *session.Store, registry *ws.Registry, lockMgr *locks.Manager) *Coordinator {
	return &Coordinator{
		repo:       repo,
		store:      store,
		registry:   registry,
		locks:      lockMgr,
		trickPause: trickPause,
		roundPause: roundPause,
	}
}

// Snapshot renders the REST game snapshot.
func Snapshot(game *models.Game) map[string]interface{} {
	return gameData(game, nil)
}

// withTableLock serializes a table's read-modify-write cycle. The
// lock is never held across the inter-trick or inter-round pauses.
func (c *Coordinator) withTableLock(ctx context.Context, gameID string, fn func(ctx context.Context) error) error {
	lock, err := c.locks.Acquire(ctx, "game:"+gameID, 0)
	if err != nil {
		log.Printf("[GAME %s] Failed to acquire table lock: %v", gameID, err)
		return err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Printf("[GAME %s] Failed to release table lock: %v", gameID, err)
		}
	}()
	return fn(ctx)
}

// FindOrCreate seats the user via matchmaking. When the seat addition
// fills the fourth chair the table transitions to in_progress and the
// first round is dealt.
func (c *Coordinator) FindOrCreate(ctx context.Context, userID string) (*models.Game, bool, error) {
	game, created, err := c.repo.FindOrCreateGame(userID)
	if err != nil {
		return nil, false, err
	}

	if readyToStart(game) {
		err := c.withTableLock(ctx, game.ID, func(ctx context.Context) error {
			// Re-check under the lock: a concurrent caller may have
			// started the table already.
			fresh, err := c.repo.GetGame(game.ID)
			if err != nil {
				return err
			}
			if !readyToStart(fresh) {
				game = fresh
				return nil
			}

			log.Printf("[GAME %s] Four players seated, starting game", game.ID)
			if err := c.repo.UpdateGameStatus(game.ID, models.StatusInProgress); err != nil {
				return err
			}
			fresh.Status = models.StatusInProgress
			game = fresh
			c.registry.Broadcast(game.ID, events.New(events.GameStarting).With("game", gameData(game, nil)).Marshal())

			state, err := c.store.Load(ctx, game.ID)
			if err != nil {
				return err
			}
			if state != nil {
				return nil
			}
			return c.startRound(ctx, game, 1)
		})
		if err != nil {
			log.Printf("[GAME %s] Failed to start game: %v", game.ID, err)
		}
	}

	return game, created, nil
}

// readyToStart reports whether a table holds four seats and has not
// transitioned to play yet.
func readyToStart(game *models.Game) bool {
	return game.Status == models.StatusWaiting && len(game.Players) == 4
}

// HandleJoin runs after a seated player's channel attaches: everyone
// at the table gets a fresh roster snapshot, and a table that is full,
// fully connected and stateless gets its first round dealt.
func (c *Coordinator) HandleJoin(ctx context.Context, client *ws.Client) {
	gameID := client.GameID
	log.Printf("[GAME %s] User %s connected", gameID, client.UserID)

	game, err := c.repo.GetGame(gameID)
	if err != nil {
		log.Printf("[GAME %s] Failed to load game on join: %v", gameID, err)
		return
	}
	state, err := c.store.Load(ctx, gameID)
	if err != nil {
		log.Printf("[GAME %s] Failed to load state on join: %v", gameID, err)
		state = nil
	}

	c.registry.Broadcast(gameID, events.New(events.PlayerUpdate).With("game", gameData(game, state)).Marshal())

	if game.Status == models.StatusInProgress && len(game.Players) == 4 &&
		c.registry.Connected(gameID) == 4 && state == nil {
		err := c.withTableLock(ctx, gameID, func(ctx context.Context) error {
			current, err := c.store.Load(ctx, gameID)
			if err != nil {
				return err
			}
			if current != nil {
				return nil
			}
			return c.startRound(ctx, game, 1)
		})
		if err != nil {
			log.Printf("[GAME %s] Failed to initialize session state: %v", gameID, err)
		}
	}
}

// HandleDisconnect runs after a channel detaches. Survivors get a
// roster update; session state stays in the store until the game
// finishes, so a reconnecting table can resume.
func (c *Coordinator) HandleDisconnect(ctx context.Context, client *ws.Client) {
	gameID := client.GameID
	log.Printf("[GAME %s] User %s disconnected", gameID, client.UserID)

	if c.registry.Connected(gameID) == 0 {
		return
	}

	game, err := c.repo.GetGame(gameID)
	if err != nil {
		log.Printf("[GAME %s] Failed to load game on disconnect: %v", gameID, err)
		return
	}
	state, err := c.store.Load(ctx, gameID)
	if err != nil {
		state = nil
	}
	c.registry.Broadcast(gameID, events.New(events.PlayerUpdate).With("game", gameData(game, state)).Marshal())
}

// startRound deals and announces a fresh round. Caller holds the
// table lock.
func (c *Coordinator) startRound(ctx context.Context, game *models.Game, roundNumber int) error {
	state, err := engine.NewRound(roundNumber, seatedUsers(game))
	if err != nil {
		return err
	}
	if err := c.saveState(ctx, game.ID, state); err != nil {
		return err
	}

	log.Printf("[GAME %s] Round %d dealt, direction %s, 2♣ with %s",
		game.ID, roundNumber, state.PassDirection, state.TurnUserID)

	if state.Phase == engine.PhasePassing {
		c.registry.BroadcastFunc(game.ID, stateFramer(events.StartPassing, game, state, map[string]interface{}{
			"direction": string(state.PassDirection),
		}))
		return nil
	}

	c.registry.BroadcastFunc(game.ID, stateFramer(events.StartPlaying, game, state, nil))
	c.broadcastYourTurn(game.ID, state.TurnUserID)
	return nil
}

// finishRound persists the round's results, announces the summary,
// and either ends the game or schedules the next deal. Caller holds
// the table lock.
func (c *Coordinator) finishRound(ctx context.Context, gameID string, state *engine.State) error {
	deltas := state.RoundDeltas()

	err := retryOnce(gameID, "persist round results", func() error {
		_, err := c.repo.RecordRoundResults(gameID, state.RoundNumber, deltas)
		return err
	})
	if err != nil {
		c.failTable(ctx, gameID, err)
		return err
	}

	game, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}

	log.Printf("[GAME %s] Round %d complete, deltas %v", gameID, state.RoundNumber, deltas)
	c.registry.BroadcastFunc(gameID, stateFramer(events.RoundEndSummary, game, state, map[string]interface{}{
		"round_number": state.RoundNumber,
		"scores":       deltas,
	}))

	totals := make(map[string]int, len(game.Players))
	for _, p := range game.Players {
		totals[p.UserID] = p.TotalScore
	}

	over, winnerID := engine.GameWinner(seatedUsers(game), totals)
	if over {
		return c.endGame(ctx, game, winnerID)
	}

	next := state.RoundNumber + 1
	go func() {
		time.Sleep(c.roundPause)
		ctx := context.Background()
		err := c.withTableLock(ctx, gameID, func(ctx context.Context) error {
			current, err := c.loadState(ctx, gameID)
			if err != nil {
				return err
			}
			if current != nil && current.RoundNumber >= next {
				return nil
			}
			fresh, err := c.loadGame(ctx, gameID)
			if err != nil {
				return err
			}
			if fresh.Status != models.StatusInProgress {
				return nil
			}
			return c.startRound(ctx, fresh, next)
		})
		if err != nil {
			log.Printf("[GAME %s] Failed to start round %d: %v", gameID, next, err)
		}
	}()
	return nil
}

// endGame finishes the table: the lowest total wins, the result is
// persisted, announced, and the session state deleted.
func (c *Coordinator) endGame(ctx context.Context, game *models.Game, winnerID string) error {
	err := retryOnce(game.ID, "end game", func() error {
		return c.repo.EndGame(game.ID, winnerID)
	})
	if err != nil {
		c.failTable(ctx, game.ID, err)
		return err
	}

	log.Printf("[GAME %s] Game over, winner %s", game.ID, winnerID)
	c.registry.Broadcast(game.ID, events.New(events.GameOver).
		With("winner", usernameOf(game, winnerID)).
		With("winner_id", winnerID).
		Marshal())

	if err := c.store.Delete(ctx, game.ID); err != nil {
		log.Printf("[GAME %s] Failed to delete session state: %v", game.ID, err)
	}
	c.registry.CloseGame(game.ID)
	return nil
}

// failTable is the second-failure path: the table is finished without
// a winner, clients are told and closed, and the state dropped.
func (c *Coordinator) failTable(ctx context.Context, gameID string, cause error) {
	log.Printf("[GAME %s] Fatal table failure: %v", gameID, cause)

	c.registry.Broadcast(gameID, events.ErrorFrame("Internal error. The game has been aborted.").Marshal())
	if err := c.repo.UpdateGameStatus(gameID, models.StatusFinished); err != nil {
		log.Printf("[GAME %s] Failed to mark game finished: %v", gameID, err)
	}
	if err := c.store.Delete(ctx, gameID); err != nil {
		log.Printf("[GAME %s] Failed to delete session state: %v", gameID, err)
	}
	c.registry.CloseGame(gameID)
}

// retryOnce runs op, and on failure runs it once more. Transient store
// and database hiccups get a single second chance before the table is
// declared lost.
func retryOnce(gameID, what string, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	log.Printf("[GAME %s] Failed to %s, retrying: %v", gameID, what, err)
	return op()
}

// loadState reads session state, retrying once before failing the
// table. A missing hash is (nil, nil), not a failure.
func (c *Coordinator) loadState(ctx context.Context, gameID string) (*engine.State, error) {
	var state *engine.State
	err := retryOnce(gameID, "load state", func() error {
		var err error
		state, err = c.store.Load(ctx, gameID)
		return err
	})
	if err != nil {
		c.failTable(ctx, gameID, err)
		return nil, err
	}
	return state, nil
}

// loadGame reads the game row, retrying once before failing the table.
func (c *Coordinator) loadGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game *models.Game
	err := retryOnce(gameID, "load game", func() error {
		var err error
		game, err = c.repo.GetGame(gameID)
		return err
	})
	if err != nil {
		c.failTable(ctx, gameID, err)
		return nil, err
	}
	return game, nil
}

// saveState writes session state through, retrying once before
// declaring the table lost.
func (c *Coordinator) saveState(ctx context.Context, gameID string, state *engine.State) error {
	err := retryOnce(gameID, "save state", func() error {
		return c.store.Save(ctx, gameID, state)
	})
	if err != nil {
		c.failTable(ctx, gameID, err)
	}
	return err
}

func (c *Coordinator) broadcastYourTurn(gameID, userID string) {
	c.registry.Broadcast(gameID, events.New(events.YourTurn).With("user_id", userID).Marshal())
}

func seatedUsers(game *models.Game) []engine.SeatedUser {
	players := make([]engine.SeatedUser, 0, len(game.Players))
	for _, p := range game.Players {
		players = append(players, engine.SeatedUser{UserID: p.UserID, Seat: p.SeatNumber})
	}
	return players
}

func usernameOf(game *models.Game, userID string) string {
	for _, p := range game.Players {
		if p.UserID == userID {
			return p.User.Username
		}
	}
	return ""
}
