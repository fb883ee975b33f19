package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"hearts-platform/backend/internal/auth"
	"hearts-platform/backend/internal/game"
	"hearts-platform/backend/internal/repository"
	"hearts-platform/backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Upgrader configures the WebSocket upgrader
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleFindOrCreateGame seats the caller via matchmaking: their
// existing seat, the oldest joinable waiting game, or a fresh one.
func HandleFindOrCreateGame(c *gin.Context, coordinator *game.Coordinator) {
	userID := c.GetString("user_id")

	g, created, err := coordinator.FindOrCreate(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, game.Snapshot(g))
}

// HandleGetGame returns one game snapshot.
func HandleGetGame(c *gin.Context, repo *repository.Repository) {
	g, err := repo.GetGame(c.Param("id"))
	if errors.Is(err, repository.ErrGameNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, game.Snapshot(g))
}

// HandleListWaitingGames returns joinable games, oldest first.
func HandleListWaitingGames(c *gin.Context, repo *repository.Repository) {
	games, err := repo.FindWaitingGames("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	results := make([]map[string]interface{}, 0, len(games))
	for i := range games {
		results = append(results, game.Snapshot(&games[i]))
	}
	c.JSON(http.StatusOK, results)
}

// HandleGameSocket upgrades the connection and attaches the caller's
// channel to their table. Identity comes from the token query
// parameter; a caller who is not authenticated or not seated at the
// game gets a policy violation close.
func HandleGameSocket(
	c *gin.Context,
	authService *auth.Service,
	repo *repository.Repository,
	registry *ws.Registry,
	coordinator *game.Coordinator,
) {
	gameID := c.Param("id")

	conn, err := Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	reject := func(reason string) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
		conn.Close()
	}

	userID, err := authService.Identify(c.Query("token"))
	if err != nil {
		reject("Unauthorized")
		return
	}

	g, err := repo.GetGame(gameID)
	if err != nil {
		reject("Game not found")
		return
	}
	seated := false
	for _, p := range g.Players {
		if p.UserID == userID {
			seated = true
			break
		}
	}
	if !seated {
		reject("Not seated at this game")
		return
	}

	client := ws.NewClient(userID, gameID, conn)
	registry.Attach(client)

	go client.WritePump()
	go func() {
		client.ReadPump(registry, coordinator.HandleMessage)
		coordinator.HandleDisconnect(context.Background(), client)
	}()

	coordinator.HandleJoin(c.Request.Context(), client)
}
