package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"hearts-platform/backend/internal/engine"
	"hearts-platform/backend/internal/hearts"

	"github.com/redis/go-redis/v9"
)

// Store persists per-table session state in a Redis hash keyed
// `game:{id}:state`. Lists and maps are JSON-encoded string fields,
// scalars are stored as strings and coerced back on read. Writers
// must hold the table's lock across load-modify-save; the store
// itself only guarantees that a single Save lands atomically.
type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func stateKey(gameID string) string {
	return fmt.Sprintf("game:%s:state", gameID)
}

// Load reads a table's state. A table with no state returns nil with
// no error.
func (s *Store) Load(ctx context.Context, gameID string) (*engine.State, error) {
	raw, err := s.redis.HGetAll(ctx, stateKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load state for game %s: %w", gameID, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeState(raw)
}

// Save replaces a table's state wholesale. The delete and rewrite run
// in one transaction so readers never observe a partial hash.
func (s *Store) Save(ctx context.Context, gameID string, state *engine.State) error {
	fields, err := encodeState(state)
	if err != nil {
		return err
	}

	key := stateKey(gameID)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save state for game %s: %w", gameID, err)
	}
	return nil
}

// Delete removes a table's state.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	if err := s.redis.Del(ctx, stateKey(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to delete state for game %s: %w", gameID, err)
	}
	return nil
}

func encodeState(state *engine.State) (map[string]string, error) {
	hands, err := json.Marshal(state.Hands)
	if err != nil {
		return nil, err
	}
	passed, err := json.Marshal(state.PassedCards)
	if err != nil {
		return nil, err
	}
	trick, err := json.Marshal(state.CurrentTrick)
	if err != nil {
		return nil, err
	}
	scores, err := json.Marshal(state.RoundScores)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"round_number":     strconv.Itoa(state.RoundNumber),
		"phase":            string(state.Phase),
		"hands":            string(hands),
		"passed_cards":     string(passed),
		"pass_direction":   string(state.PassDirection),
		"current_trick":    string(trick),
		"lead_suit":        string(state.LeadSuit),
		"turn_user_id":     state.TurnUserID,
		"trick_starter_id": state.TrickStarterID,
		"round_scores":     string(scores),
		"hearts_broken":    strconv.FormatBool(state.HeartsBroken),
	}, nil
}

func decodeState(raw map[string]string) (*engine.State, error) {
	state := &engine.State{
		Phase:          engine.Phase(raw["phase"]),
		PassDirection:  engine.Direction(raw["pass_direction"]),
		LeadSuit:       hearts.Suit(raw["lead_suit"]),
		TurnUserID:     raw["turn_user_id"],
		TrickStarterID: raw["trick_starter_id"],
	}

	if v := raw["round_number"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("bad round_number %q: %w", v, err)
		}
		state.RoundNumber = n
	}
	if v := raw["hearts_broken"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("bad hearts_broken %q: %w", v, err)
		}
		state.HeartsBroken = b
	}

	if err := json.Unmarshal([]byte(orDefault(raw["hands"], "{}")), &state.Hands); err != nil {
		return nil, fmt.Errorf("bad hands field: %w", err)
	}
	if err := json.Unmarshal([]byte(orDefault(raw["passed_cards"], "{}")), &state.PassedCards); err != nil {
		return nil, fmt.Errorf("bad passed_cards field: %w", err)
	}
	if err := json.Unmarshal([]byte(orDefault(raw["current_trick"], "[]")), &state.CurrentTrick); err != nil {
		return nil, fmt.Errorf("bad current_trick field: %w", err)
	}
	if err := json.Unmarshal([]byte(orDefault(raw["round_scores"], "{}")), &state.RoundScores); err != nil {
		return nil, fmt.Errorf("bad round_scores field: %w", err)
	}

	return state, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
