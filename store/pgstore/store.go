// Package pgstore is the Postgres-backed alternative to redisstore: an
// illustrative, durable AnswerStore for embedders that want a SQL store
// instead of Redis (SPEC_FULL.md §4). Never imported by the core
// compiler/evaluator packages.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lyzr/formengine/common/db"
	"github.com/lyzr/formengine/request"
)

// Schema is the table this store expects to already exist:
//
//	CREATE TABLE form_answers (
//	    session_id   TEXT NOT NULL,
//	    field_code   TEXT NOT NULL,
//	    current_value JSONB NOT NULL,
//	    mutations     JSONB NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (session_id, field_code)
//	);
const Schema = `
CREATE TABLE IF NOT EXISTS form_answers (
    session_id    TEXT NOT NULL,
    field_code    TEXT NOT NULL,
    current_value JSONB NOT NULL,
    mutations     JSONB NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (session_id, field_code)
);`

// Store persists request.AnswerEntry rows in Postgres via pgxpool, grounded
// on the teacher's common/db.DB pool-config-and-ping pattern.
type Store struct {
	db *db.DB
}

// New wraps an already-connected db.DB.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// EnsureSchema creates form_answers if it does not already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

// LoadAll loads every persisted answer for a session.
func (s *Store) LoadAll(ctx context.Context, sessionID string) (map[string]request.AnswerEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT field_code, current_value, mutations FROM form_answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load answers for %s: %w", sessionID, err)
	}
	defer rows.Close()

	out := make(map[string]request.AnswerEntry)
	for rows.Next() {
		var code string
		var currentRaw, mutationsRaw []byte
		if err := rows.Scan(&code, &currentRaw, &mutationsRaw); err != nil {
			return nil, fmt.Errorf("pgstore: scan row: %w", err)
		}
		var entry request.AnswerEntry
		if err := json.Unmarshal(currentRaw, &entry.Current); err != nil {
			return nil, fmt.Errorf("pgstore: decode current_value for %s: %w", code, err)
		}
		if err := json.Unmarshal(mutationsRaw, &entry.Mutations); err != nil {
			return nil, fmt.Errorf("pgstore: decode mutations for %s: %w", code, err)
		}
		out[code] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: iterate rows: %w", err)
	}
	return out, nil
}

// SaveAll upserts every entry in a snapshot for a session, one row per
// field code — called after a SUBMIT commits.
func (s *Store) SaveAll(ctx context.Context, sessionID string, entries map[string]request.AnswerEntry) error {
	for code, entry := range entries {
		currentRaw, err := json.Marshal(entry.Current)
		if err != nil {
			return fmt.Errorf("pgstore: encode current_value for %s: %w", code, err)
		}
		mutationsRaw, err := json.Marshal(entry.Mutations)
		if err != nil {
			return fmt.Errorf("pgstore: encode mutations for %s: %w", code, err)
		}
		_, err = s.db.Exec(ctx, `
			INSERT INTO form_answers (session_id, field_code, current_value, mutations, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (session_id, field_code)
			DO UPDATE SET current_value = EXCLUDED.current_value,
			              mutations = EXCLUDED.mutations,
			              updated_at = now()`,
			sessionID, code, currentRaw, mutationsRaw)
		if err != nil {
			return fmt.Errorf("pgstore: upsert %s/%s: %w", sessionID, code, err)
		}
	}
	return nil
}

// Delete removes every persisted answer for a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM form_answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("pgstore: delete session %s: %w", sessionID, err)
	}
	return nil
}
