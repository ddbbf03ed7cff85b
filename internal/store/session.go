package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/storefront/internal/state"
)

// Keys under which the session mirror is stored.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// SaveSession writes the token and user record in one transaction.
func (s *Store) SaveSession(ctx context.Context, token string, user state.User) error {
	userJSON, err := marshalUser(user)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save session: begin: %w", err)
	}
	defer tx.Rollback()

	if err := setKey(ctx, tx, KeyToken, token); err != nil {
		return fmt.Errorf("save session: token: %w", err)
	}
	if err := setKey(ctx, tx, KeyUser, userJSON); err != nil {
		return fmt.Errorf("save session: user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save session: commit: %w", err)
	}
	return nil
}

// LoadSession returns the persisted token and user. Both are zero when no
// session is stored. A malformed user record is reported as an error.
func (s *Store) LoadSession(ctx context.Context) (string, *state.User, error) {
	token, _, err := s.Get(ctx, KeyToken)
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}
	raw, ok, err := s.Get(ctx, KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return token, nil, nil
	}
	user, err := unmarshalUser(raw)
	if err != nil {
		return token, nil, fmt.Errorf("load session: %w", err)
	}
	return token, user, nil
}

// ClearSession removes the token and user record in one transaction.
func (s *Store) ClearSession(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear session: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key IN (?, ?)`, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear session: commit: %w", err)
	}
	return nil
}

func marshalUser(u state.User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("marshal user: %w", err)
	}
	return string(data), nil
}

func unmarshalUser(raw string) (*state.User, error) {
	var u state.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}
