// Package postgres stores polling session snapshots in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/checkout-kit/internal/adapters/ports"
	"github.com/kevin07696/checkout-kit/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Schema creates the snapshot table
const Schema = `
CREATE TABLE IF NOT EXISTS polling_sessions (
	name             TEXT PRIMARY KEY,
	session_id       UUID        NOT NULL,
	client_key       TEXT        NOT NULL,
	payment_data     TEXT        NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	current_delay_ms BIGINT      NOT NULL DEFAULT 0,
	last_status      JSONB,
	updated_at       TIMESTAMPTZ NOT NULL
)`

const (
	upsertSessionSQL = `
INSERT INTO polling_sessions (name, session_id, client_key, payment_data, started_at, current_delay_ms, last_status, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (name) DO UPDATE SET
	session_id       = EXCLUDED.session_id,
	client_key       = EXCLUDED.client_key,
	payment_data     = EXCLUDED.payment_data,
	started_at       = EXCLUDED.started_at,
	current_delay_ms = EXCLUDED.current_delay_ms,
	last_status      = EXCLUDED.last_status,
	updated_at       = EXCLUDED.updated_at`

	selectSessionSQL = `
SELECT session_id, client_key, payment_data, started_at, current_delay_ms, last_status, updated_at
FROM polling_sessions
WHERE name = $1`

	deleteSessionSQL = `DELETE FROM polling_sessions WHERE name = $1`
)

// SessionStore implements ports.SessionStore on PostgreSQL
type SessionStore struct {
	db DBTX
}

// NewSessionStore creates a session store on top of db
func NewSessionStore(db DBTX) *SessionStore {
	return &SessionStore{db: db}
}

// Migrate creates the snapshot table if it does not exist
func (s *SessionStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create polling_sessions table: %w", err)
	}
	return nil
}

// Save implements ports.SessionStore
func (s *SessionStore) Save(ctx context.Context, name string, session *domain.PollingSession) error {
	if session == nil {
		return fmt.Errorf("save polling session: session is nil")
	}

	var lastStatus []byte
	if session.LastStatus != nil {
		encoded, err := json.Marshal(session.LastStatus)
		if err != nil {
			return fmt.Errorf("marshal last status: %w", err)
		}
		lastStatus = encoded
	}

	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = session.StartedAt
	}

	_, err := s.db.Exec(ctx, upsertSessionSQL,
		name,
		pgtype.UUID{Bytes: session.ID, Valid: true},
		session.ClientKey,
		session.PaymentData,
		session.StartedAt,
		session.CurrentDelay.Milliseconds(),
		lastStatus,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("save polling session: %w", err)
	}
	return nil
}

// Load implements ports.SessionStore
func (s *SessionStore) Load(ctx context.Context, name string) (*domain.PollingSession, error) {
	var (
		id         pgtype.UUID
		delayMS    int64
		lastStatus []byte
		session    domain.PollingSession
	)

	err := s.db.QueryRow(ctx, selectSessionSQL, name).Scan(
		&id,
		&session.ClientKey,
		&session.PaymentData,
		&session.StartedAt,
		&delayMS,
		&lastStatus,
		&session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ports.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load polling session: %w", err)
	}

	session.ID = uuid.UUID(id.Bytes)
	session.CurrentDelay = time.Duration(delayMS) * time.Millisecond
	session.StartedAt = session.StartedAt.UTC()
	session.UpdatedAt = session.UpdatedAt.UTC()

	if lastStatus != nil {
		var status domain.StatusResponse
		if err := json.Unmarshal(lastStatus, &status); err != nil {
			return nil, fmt.Errorf("unmarshal last status: %w", err)
		}
		session.LastStatus = &status
	}

	return &session, nil
}

// Delete implements ports.SessionStore
func (s *SessionStore) Delete(ctx context.Context, name string) error {
	if _, err := s.db.Exec(ctx, deleteSessionSQL, name); err != nil {
		return fmt.Errorf("delete polling session: %w", err)
	}
	return nil
}
