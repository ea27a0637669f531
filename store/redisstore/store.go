// Package redisstore is an illustrative AnswerStore persistence layer over
// Redis — one way an embedder might keep a session's answers across
// separate form-render requests (SPEC_FULL.md §4's "Example embedder
// stores"). Never imported by the core compiler/evaluator packages.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lyzr/formengine/common/redis"
	"github.com/lyzr/formengine/request"
)

// DefaultTTL is how long a session's answers survive with no further writes.
const DefaultTTL = 24 * time.Hour

// Store persists request.AnswerEntry values in Redis, one key per
// (sessionID, fieldCode) pair — the same SetWithExpiry/Get wrapper calls
// the teacher's coordinator uses for its ir:<runID> cache entries, keyed
// here by answer instead of by compiled IR blob.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an already-constructed redis.Client.
func New(client *redis.Client) *Store {
	return &Store{client: client, ttl: DefaultTTL}
}

// WithTTL returns a copy of the store using ttl instead of DefaultTTL.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	return &Store{client: s.client, ttl: ttl}
}

func key(sessionID, fieldCode string) string {
	return fmt.Sprintf("answers:%s:%s", sessionID, fieldCode)
}

// Get loads one field's answer entry, if it exists.
func (s *Store) Get(ctx context.Context, sessionID, fieldCode string) (request.AnswerEntry, bool, error) {
	raw, err := s.client.Get(ctx, key(sessionID, fieldCode))
	if err != nil {
		return request.AnswerEntry{}, false, nil
	}
	var entry request.AnswerEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return request.AnswerEntry{}, false, fmt.Errorf("redisstore: decode %s/%s: %w", sessionID, fieldCode, err)
	}
	return entry, true, nil
}

// LoadAll loads every answer for a session, given the set of field codes the
// compiled journey's pseudo-nodes reference — redisstore has no index of
// "every field this session has ever answered", so the caller (typically the
// compiler's pseudo-node registry for the target step) supplies the codes to
// look up.
func (s *Store) LoadAll(ctx context.Context, sessionID string, fieldCodes []string) (map[string]request.AnswerEntry, error) {
	out := make(map[string]request.AnswerEntry, len(fieldCodes))
	for _, code := range fieldCodes {
		entry, ok, err := s.Get(ctx, sessionID, code)
		if err != nil {
			return nil, err
		}
		if ok {
			out[code] = entry
		}
	}
	return out, nil
}

// Set persists one field's answer entry, overwriting whatever was stored.
func (s *Store) Set(ctx context.Context, sessionID, fieldCode string, entry request.AnswerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redisstore: encode %s/%s: %w", sessionID, fieldCode, err)
	}
	return s.client.SetWithExpiry(ctx, key(sessionID, fieldCode), string(raw), s.ttl)
}

// SaveAll persists every entry in a snapshot (eval.AnswerStore.Snapshot, via
// request.AnswerEntry), one key per field — called after a SUBMIT commits.
func (s *Store) SaveAll(ctx context.Context, sessionID string, entries map[string]request.AnswerEntry) error {
	for code, entry := range entries {
		if err := s.Set(ctx, sessionID, code, entry); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a session's answer for one field.
func (s *Store) Delete(ctx context.Context, sessionID, fieldCode string) error {
	return s.client.Delete(ctx, key(sessionID, fieldCode))
}
