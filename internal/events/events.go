package events

import (
	"encoding/json"
	"log"
)

// Inbound event names, sent by clients.
const (
	RequestInitialState = "request_initial_state"
	PassCards           = "pass_cards"
	PlayCard            = "play_card"
)

// Outbound event names, broadcast or sent by the coordinator.
const (
	GameStarting      = "game_starting"
	PlayerUpdate      = "player_update"
	InitialState      = "initial_state"
	StartPassing      = "start_passing"
	StartPlaying      = "start_playing"
	CardsPassedUpdate = "cards_passed_update"
	YourTurn          = "your_turn"
	CardPlayed        = "card_played"
	TrickEnd          = "trick_end"
	RoundEndSummary   = "round_end_summary"
	GameOver          = "game_over"
	Error             = "error"
)

// Inbound is a client frame. Every frame carries an event name plus
// the fields of that event; unknown fields are ignored.
type Inbound struct {
	Event string   `json:"event"`
	Cards []string `json:"cards,omitempty"`
	Card  string   `json:"card,omitempty"`
}

// ParseInbound decodes a client frame. Malformed JSON returns false;
// the caller drops the frame silently.
func ParseInbound(data []byte) (Inbound, bool) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, false
	}
	return msg, true
}

// Frame is an outbound wire frame under construction.
type Frame map[string]interface{}

// New starts a frame for the named event.
func New(event string) Frame {
	return Frame{"event": event}
}

// With adds a field and returns the frame for chaining.
func (f Frame) With(key string, value interface{}) Frame {
	f[key] = value
	return f
}

// Marshal encodes the frame for the wire. Frames are built from
// marshalable values only; an encoding failure is a bug and yields a
// logged empty frame rather than a crash.
func (f Frame) Marshal() []byte {
	data, err := json.Marshal(map[string]interface{}(f))
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal %v frame: %v", f["event"], err)
		return []byte(`{}`)
	}
	return data
}

// ErrorFrame is the private rule-violation reply.
func ErrorFrame(message string) Frame {
	return New(Error).With("message", message)
}
