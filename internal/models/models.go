package models

import (
	"time"
)

// Game status values.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// User represents a registered player.
type User struct {
	ID           string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"column:email;type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// Game represents one four-seat Hearts table.
type Game struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Status    string    `gorm:"column:status;type:varchar(20);default:waiting" json:"status"`
	WinnerID  *string   `gorm:"column:winner_id;type:varchar(36)" json:"winner_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Winner  *User        `gorm:"foreignKey:WinnerID" json:"winner,omitempty"`
	Players []GamePlayer `gorm:"foreignKey:GameID" json:"players"`
	Rounds  []Round      `gorm:"foreignKey:GameID" json:"rounds"`
}

// TableName specifies the table name for Game model
func (Game) TableName() string {
	return "games"
}

// GamePlayer seats a user at a game. At most four per game, one per
// seat number, one per user.
type GamePlayer struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	GameID     string `gorm:"column:game_id;type:varchar(36);not null;uniqueIndex:unique_game_user;uniqueIndex:unique_game_seat" json:"game_id"`
	UserID     string `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:unique_game_user" json:"user_id"`
	SeatNumber int    `gorm:"column:seat_number;not null;uniqueIndex:unique_game_seat" json:"seat_number"`
	TotalScore int    `gorm:"column:total_score;not null;default:0" json:"total_score"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// TableName specifies the table name for GamePlayer model
func (GamePlayer) TableName() string {
	return "game_players"
}

// Round records one completed round of a game.
type Round struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GameID      string `gorm:"column:game_id;type:varchar(36);not null;index:idx_game_round" json:"game_id"`
	RoundNumber int    `gorm:"column:round_number;not null" json:"round_number"`

	Scores []RoundScore `gorm:"foreignKey:RoundID" json:"scores"`
}

// TableName specifies the table name for Round model
func (Round) TableName() string {
	return "rounds"
}

// RoundScore is one player's score delta for a round.
type RoundScore struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RoundID int64  `gorm:"column:round_id;not null;index:idx_round" json:"-"`
	UserID  string `gorm:"column:user_id;type:varchar(36);not null" json:"user_id"`
	Score   int    `gorm:"column:score;not null" json:"score"`
}

// TableName specifies the table name for RoundScore model
func (RoundScore) TableName() string {
	return "round_scores"
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a fresh token and the user it identifies.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
