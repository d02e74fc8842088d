// Package store defines the persistence contracts for the application
// state document. Implementations live under internal/store/<driver>/
// (diskv, sqlite, postgres).
package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/model"
)

// LocalStore persists the whole state for local-only sessions under a
// single key. Save overwrites; there are no partial writes.
type LocalStore interface {
	Load() (*model.AppState, error)
	Save(st *model.AppState) error
	Clear() error
}

// ChangeFunc receives the full remote state on every delivery.
type ChangeFunc func(st *model.AppState)

// RemoteStore persists one state document per user id.
type RemoteStore interface {
	// Save overwrites the user's document in full.
	Save(ctx context.Context, userID string, st *model.AppState) error
	// Load fetches the full document, or model.ErrNotFound when absent.
	Load(ctx context.Context, userID string) (*model.AppState, error)
	// Subscribe registers a live subscription. fn fires with the full
	// document on the first delivery and on every subsequent change; a
	// non-existent document produces no callback. The returned function
	// stops delivery but does not cancel writes already in flight.
	Subscribe(ctx context.Context, userID string, fn ChangeFunc) (func(), error)
}

// LoadOrDefault returns the persisted local state, substituting the seed
// state when nothing is stored or the payload fails to parse. The failure
// is logged, never surfaced.
func LoadOrDefault(l LocalStore, log zerolog.Logger) *model.AppState {
	st, err := l.Load()
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			log.Warn().Err(err).Msg("local state unreadable, using seed state")
		}
		return model.DefaultState()
	}
	return st
}
