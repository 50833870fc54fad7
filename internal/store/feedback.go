package store

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/typeflow/internal/model"
)

type feedbackRow struct {
	model.FeedbackEntry
	Created string `db:"created_at"`
}

// SaveFeedback stores a local copy of a feedback entry.
func (s *Store) SaveFeedback(ctx context.Context, entry model.FeedbackEntry) error {
	row := feedbackRow{FeedbackEntry: entry, Created: entry.CreatedAt.Format(time.RFC3339Nano)}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO feedback (id, created_at, liked, improve, bugs, email, user_agent, sent)
		 VALUES (:id, :created_at, :liked, :improve, :bugs, :email, :user_agent, :sent)`, row)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// MarkFeedbackSent flags an entry as delivered.
func (s *Store) MarkFeedbackSent(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE feedback SET sent = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark feedback sent: %w", err)
	}
	return nil
}

// ListFeedback returns stored feedback, oldest first.
func (s *Store) ListFeedback(ctx context.Context) ([]model.FeedbackEntry, error) {
	var rows []feedbackRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, created_at, liked, improve, bugs, email, user_agent, sent FROM feedback ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	out := make([]model.FeedbackEntry, 0, len(rows))
	for _, r := range rows {
		created, err := time.Parse(time.RFC3339Nano, r.Created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feedback time: %w", err)
		}
		entry := r.FeedbackEntry
		entry.CreatedAt = created
		out = append(out, entry)
	}
	return out, nil
}
