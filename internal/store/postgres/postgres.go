// Package postgres implements the remote state store: one JSON document
// per user id, with LISTEN/NOTIFY push so other sessions receive every
// overwrite in real time.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/model"
	"github.com/studiflow/studiflow/internal/store"
)

const channel = "studiflow_state_changed"

const ddl = `CREATE TABLE IF NOT EXISTS app_states (
    user_id    TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Open opens a connection pool using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap ensures the document table exists.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// Store implements store.RemoteStore. Subscriptions hold a dedicated
// LISTEN connection each; the pool handles everything else.
type Store struct {
	db  *sql.DB
	dsn string
	log zerolog.Logger
}

var _ store.RemoteStore = (*Store)(nil)

// New wires a Store over an open pool. The DSN is retained for the
// dedicated subscription connections.
func New(db *sql.DB, dsn string, log zerolog.Logger) *Store {
	return &Store{db: db, dsn: dsn, log: log}
}

// Save overwrites the user's document in full and notifies subscribers.
func (s *Store) Save(ctx context.Context, userID string, st *model.AppState) error {
	doc, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO app_states (user_id, doc, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
    `, userID, doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, userID); err != nil {
		// Subscribers miss this push but the write itself landed.
		s.log.Warn().Err(err).Str("user", userID).Msg("notify failed after save")
	}
	return nil
}

// Load fetches the full document, or model.ErrNotFound when absent.
func (s *Store) Load(ctx context.Context, userID string) (*model.AppState, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM app_states WHERE user_id = $1`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st model.AppState
	if err := json.Unmarshal(doc, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

// Subscribe delivers the document once up front (when it exists) and then
// once per notification for this user. Delivery stops when the returned
// function is called; an in-flight Save is not cancelled.
func (s *Store) Subscribe(ctx context.Context, userID string, fn store.ChangeFunc) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	deliver := func() {
		st, err := s.Load(subCtx, userID)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) && subCtx.Err() == nil {
				s.log.Warn().Err(err).Str("user", userID).Msg("subscription load failed")
			}
			return
		}
		if subCtx.Err() == nil {
			fn(st)
		}
	}

	conn, err := pgx.Connect(subCtx, s.dsn)
	if err != nil {
		cancel()
		return nil, err
	}
	if _, err := conn.Exec(subCtx, "LISTEN "+channel); err != nil {
		cancel()
		_ = conn.Close(context.Background())
		return nil, err
	}

	// First delivery mirrors the initial snapshot callback of the remote
	// document API; a non-existent document stays silent.
	deliver()

	go func() {
		defer func() { _ = conn.Close(context.Background()) }()
		for {
			note, err := conn.WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					s.log.Warn().Err(err).Str("user", userID).Msg("subscription terminated")
				}
				return
			}
			if note.Payload == userID {
				deliver()
			}
		}
	}()

	return cancel, nil
}

// HealthPing reports Postgres reachability.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
