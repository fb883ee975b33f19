package ws

import (
	"log"
	"sync"
)

// Registry is the in-process map of live channels per table. All
// methods are safe for concurrent use. Sends are best-effort: a
// client whose buffer is full is detached silently so one slow
// reader never blocks the table.
type Registry struct {
	mu    sync.RWMutex
	games map[string]map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]map[string]*Client)}
}

// Attach registers a client under its game and user. A stale channel
// for the same user is replaced and closed.
func (r *Registry) Attach(c *Client) {
	r.mu.Lock()
	clients, ok := r.games[c.GameID]
	if !ok {
		clients = make(map[string]*Client)
		r.games[c.GameID] = clients
	}
	stale := clients[c.UserID]
	clients[c.UserID] = c
	r.mu.Unlock()

	if stale != nil && stale != c {
		stale.close()
	}
}

// Detach removes the client unless a newer channel already replaced
// it, and closes its send channel.
func (r *Registry) Detach(c *Client) {
	r.mu.Lock()
	if clients, ok := r.games[c.GameID]; ok && clients[c.UserID] == c {
		delete(clients, c.UserID)
		if len(clients) == 0 {
			delete(r.games, c.GameID)
		}
	}
	r.mu.Unlock()

	c.close()
}

// Lookup returns the live channel for a user at a table, or nil.
func (r *Registry) Lookup(gameID, userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.games[gameID][userID]
}

// Connected returns how many channels are live for a table.
func (r *Registry) Connected(gameID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games[gameID])
}

// Send queues a frame to one client. A closed client or full buffer
// detaches the client and reports failure.
func (r *Registry) Send(c *Client, frame []byte) bool {
	select {
	case <-c.done:
		r.Detach(c)
		return false
	case c.send <- frame:
		return true
	default:
		log.Printf("[WS] Send buffer full for user %s at game %s, detaching", c.UserID, c.GameID)
		r.Detach(c)
		return false
	}
}

// Broadcast queues the same frame to every client at a table.
func (r *Registry) Broadcast(gameID string, frame []byte) {
	for _, c := range r.snapshot(gameID) {
		r.Send(c, frame)
	}
}

// BroadcastFunc queues a per-recipient frame to every client at a
// table. perUser returning nil skips that recipient.
func (r *Registry) BroadcastFunc(gameID string, perUser func(userID string) []byte) {
	for _, c := range r.snapshot(gameID) {
		if frame := perUser(c.UserID); frame != nil {
			r.Send(c, frame)
		}
	}
}

// CloseGame detaches every channel at a table.
func (r *Registry) CloseGame(gameID string) {
	for _, c := range r.snapshot(gameID) {
		r.Detach(c)
	}
}

// snapshot copies the client set so sends run without the lock held.
func (r *Registry) snapshot(gameID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.games[gameID]))
	for _, c := range r.games[gameID] {
		clients = append(clients, c)
	}
	return clients
}
