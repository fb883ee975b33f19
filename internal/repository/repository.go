package repository

import (
	"errors"
	"fmt"
	"sort"

	"hearts-platform/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrGameNotFound is returned when a game id resolves to nothing.
var ErrGameNotFound = errors.New("game not found")

// Repository is the narrow CRUD surface the game core consumes. It
// owns Game, GamePlayer, Round and RoundScore rows; the session
// coordinator touches it only at lobby and round boundaries.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID loads a user by id.
func (r *Repository) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGame loads a game with its players, rounds and winner.
func (r *Repository) GetGame(id string) (*models.Game, error) {
	var game models.Game
	err := r.db.
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_number ASC")
		}).
		Preload("Players.User").
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_number ASC")
		}).
		Preload("Rounds.Scores").
		Preload("Winner").
		Where("id = ?", id).
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// FindWaitingGames returns all waiting games, oldest first, optionally
// excluding games the given user is already seated in.
func (r *Repository) FindWaitingGames(excludingUser string) ([]models.Game, error) {
	var games []models.Game
	query := r.db.
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_number ASC")
		}).
		Preload("Players.User").
		Where("status = ?", models.StatusWaiting).
		Order("created_at ASC")

	if excludingUser != "" {
		query = query.Where(
			"id NOT IN (?)",
			r.db.Model(&models.GamePlayer{}).Select("game_id").Where("user_id = ?", excludingUser),
		)
	}

	if err := query.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// CreateGame inserts a fresh waiting game.
func (r *Repository) CreateGame() (*models.Game, error) {
	game := models.Game{
		ID:     uuid.New().String(),
		Status: models.StatusWaiting,
	}
	if err := r.db.Create(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// SeatPlayer seats a user at the lowest free seat of the game. It is
// idempotent: a user already seated keeps their seat.
func (r *Repository) SeatPlayer(game *models.Game, userID string) (*models.GamePlayer, error) {
	var existing models.GamePlayer
	err := r.db.Where("game_id = ? AND user_id = ?", game.ID, userID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var taken []int
	if err := r.db.Model(&models.GamePlayer{}).
		Where("game_id = ?", game.ID).
		Pluck("seat_number", &taken).Error; err != nil {
		return nil, err
	}
	if len(taken) >= 4 {
		return nil, fmt.Errorf("game %s is already full", game.ID)
	}

	sort.Ints(taken)
	seat := 1
	for _, n := range taken {
		if n == seat {
			seat++
		}
	}

	player := models.GamePlayer{
		GameID:     game.ID,
		UserID:     userID,
		SeatNumber: seat,
	}
	if err := r.db.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// FindOrCreateGame seats the user in the oldest joinable waiting game,
// creating a new one when none exists. It reports whether a game was
// created. Calling it again for an already seated user returns the
// same game and seat.
func (r *Repository) FindOrCreateGame(userID string) (*models.Game, bool, error) {
	// An existing waiting or running seat wins over matchmaking.
	var seated models.GamePlayer
	err := r.db.
		Joins("JOIN games ON games.id = game_players.game_id").
		Where("game_players.user_id = ? AND games.status IN ?", userID, []string{models.StatusWaiting, models.StatusInProgress}).
		Order("games.created_at ASC").
		First(&seated).Error
	if err == nil {
		game, err := r.GetGame(seated.GameID)
		return game, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	waiting, err := r.FindWaitingGames(userID)
	if err != nil {
		return nil, false, err
	}

	created := false
	var target *models.Game
	for i := range waiting {
		if len(waiting[i].Players) < 4 {
			target = &waiting[i]
			break
		}
	}
	if target == nil {
		target, err = r.CreateGame()
		if err != nil {
			return nil, false, err
		}
		created = true
	}

	if _, err := r.SeatPlayer(target, userID); err != nil {
		return nil, false, err
	}

	game, err := r.GetGame(target.ID)
	return game, created, err
}

// UpdateGameStatus transitions a game's lifecycle status.
func (r *Repository) UpdateGameStatus(gameID, status string) error {
	return r.db.Model(&models.Game{}).Where("id = ?", gameID).Update("status", status).Error
}

// EndGame marks the game finished with its winner.
func (r *Repository) EndGame(gameID, winnerID string) error {
	return r.db.Model(&models.Game{}).Where("id = ?", gameID).Updates(map[string]interface{}{
		"status":    models.StatusFinished,
		"winner_id": winnerID,
	}).Error
}

// CreateRound inserts a round row for the game.
func (r *Repository) CreateRound(gameID string, roundNumber int) (*models.Round, error) {
	round := models.Round{GameID: gameID, RoundNumber: roundNumber}
	if err := r.db.Create(&round).Error; err != nil {
		return nil, err
	}
	return &round, nil
}

// RecordRoundScore inserts one player's score delta for a round.
func (r *Repository) RecordRoundScore(roundID int64, userID string, score int) error {
	return r.db.Create(&models.RoundScore{RoundID: roundID, UserID: userID, Score: score}).Error
}

// RecordRoundResults persists a completed round in one transaction:
// the round row, one score row per player, and each player's new
// running total. Either everything lands or nothing does.
func (r *Repository) RecordRoundResults(gameID string, roundNumber int, deltas map[string]int) (*models.Round, error) {
	round := models.Round{GameID: gameID, RoundNumber: roundNumber}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&round).Error; err != nil {
			return err
		}
		for userID, delta := range deltas {
			score := models.RoundScore{RoundID: round.ID, UserID: userID, Score: delta}
			if err := tx.Create(&score).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.GamePlayer{}).
				Where("game_id = ? AND user_id = ?", gameID, userID).
				Update("total_score", gorm.Expr("total_score + ?", delta)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record round %d for game %s: %w", roundNumber, gameID, err)
	}
	return &round, nil
}

// AddTotalScore adds a delta to a seated player's running total.
func (r *Repository) AddTotalScore(gameID, userID string, delta int) error {
	return r.db.Model(&models.GamePlayer{}).
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Update("total_score", gorm.Expr("total_score + ?", delta)).Error
}
