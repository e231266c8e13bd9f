// Package overrides persists per-user local question overrides and the
// per-question answer history. Overrides survive dataset reloads and are
// re-applied live at render time.
package overrides

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcq-trainer/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the user's override for one question, or nil when none exists.
func (s *Store) Get(ctx context.Context, userID int64, datasetID, questionID string) (*models.LocalOverride, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM question_overrides
		 WHERE user_id = $1 AND dataset_id = $2 AND question_id = $3`,
		userID, datasetID, questionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load override: %w", err)
	}
	var o models.LocalOverride
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("failed to decode override payload: %w", err)
	}
	return &o, nil
}

// Set stores or replaces an override. Last writer wins.
func (s *Store) Set(ctx context.Context, userID int64, datasetID, questionID string, o *models.LocalOverride) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode override payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO question_overrides (user_id, dataset_id, question_id, payload, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, dataset_id, question_id)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		userID, datasetID, questionID, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to store override: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID int64, datasetID, questionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM question_overrides
		 WHERE user_id = $1 AND dataset_id = $2 AND question_id = $3`,
		userID, datasetID, questionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

// List returns all of a user's overrides for one dataset, keyed by question
// id.
func (s *Store) List(ctx context.Context, userID int64, datasetID string) (map[string]*models.LocalOverride, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, payload FROM question_overrides
		 WHERE user_id = $1 AND dataset_id = $2`,
		userID, datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.LocalOverride)
	for rows.Next() {
		var questionID string
		var payload []byte
		if err := rows.Scan(&questionID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		var o models.LocalOverride
		if err := json.Unmarshal(payload, &o); err != nil {
			return nil, fmt.Errorf("failed to decode override payload: %w", err)
		}
		out[questionID] = &o
	}
	return out, rows.Err()
}

// RecordResult appends one answered result to the history.
func (s *Store) RecordResult(ctx context.Context, userID int64, datasetID, questionID string, correct bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answer_history (user_id, dataset_id, question_id, correct)
		 VALUES ($1, $2, $3, $4)`,
		userID, datasetID, questionID, correct,
	)
	if err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	return nil
}

// LatestResults returns, per question, the most recent answered result.
func (s *Store) LatestResults(ctx context.Context, userID int64, datasetID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ON (question_id) question_id, correct
		 FROM answer_history
		 WHERE user_id = $1 AND dataset_id = $2
		 ORDER BY question_id, answered_at DESC, id DESC`,
		userID, datasetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var questionID string
		var correct bool
		if err := rows.Scan(&questionID, &correct); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		out[questionID] = correct
	}
	return out, rows.Err()
}
