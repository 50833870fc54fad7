package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/typeflow/internal/model"
)

type sessionRow struct {
	ID              int64  `db:"id"`
	StartedAt       string `db:"started_at"`
	EndedAt         string `db:"ended_at"`
	Mode            string `db:"mode"`
	WPM             int    `db:"wpm"`
	Accuracy        int    `db:"accuracy"`
	Correct         int    `db:"correct"`
	Incorrect       int    `db:"incorrect"`
	DurationSeconds int    `db:"duration_s"`
}

func (r sessionRow) record() (model.SessionRecord, error) {
	started, err := time.Parse(time.RFC3339Nano, r.StartedAt)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to parse started_at of session %d: %w", r.ID, err)
	}
	ended, err := time.Parse(time.RFC3339Nano, r.EndedAt)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to parse ended_at of session %d: %w", r.ID, err)
	}
	return model.SessionRecord{
		ID:              r.ID,
		StartedAt:       started,
		EndedAt:         ended,
		Mode:            r.Mode,
		WPM:             r.WPM,
		Accuracy:        r.Accuracy,
		Correct:         r.Correct,
		Incorrect:       r.Incorrect,
		DurationSeconds: r.DurationSeconds,
	}, nil
}

// InsertSession appends a finished session and its mistakes to the session log.
func (s *Store) InsertSession(ctx context.Context, result model.SessionResult) (id int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session insert: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	row := sessionRow{
		StartedAt:       result.StartedAt.Format(time.RFC3339Nano),
		EndedAt:         result.EndedAt.Format(time.RFC3339Nano),
		Mode:            result.Mode.String(),
		WPM:             result.WordsPerMinute,
		Accuracy:        result.AccuracyPercent,
		Correct:         result.CorrectCount,
		Incorrect:       result.IncorrectCount,
		DurationSeconds: result.DurationSeconds,
	}
	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, wpm, accuracy, correct, incorrect, duration_s)
		 VALUES (:started_at, :ended_at, :mode, :wpm, :accuracy, :correct, :incorrect, :duration_s)`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	chars := make([]string, 0, len(result.MistakesByExpectedChar))
	for ch, n := range result.MistakesByExpectedChar {
		if n > 0 {
			chars = append(chars, ch)
		}
	}
	sort.Strings(chars)
	for _, ch := range chars {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO session_mistakes (session_id, char, mistakes) VALUES (?, ?, ?)`,
			id, ch, result.MistakesByExpectedChar[ch]); err != nil {
			return 0, fmt.Errorf("failed to insert mistakes: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// ListSessions returns logged sessions filtered by cfg, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, mode, wpm, accuracy, correct, incorrect, duration_s
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))

	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := make([]model.SessionRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return sessions, nil
}

// MistakesForSessions aggregates mistakes per expected character across sessions,
// most mistakes first.
func (s *Store) MistakesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharMistakes, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT char, SUM(mistakes) AS mistakes, COUNT(DISTINCT session_id) AS sessions
		FROM session_mistakes
		WHERE session_id IN (?)
		GROUP BY char
		ORDER BY mistakes DESC, char ASC`, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build mistakes query: %w", err)
	}
	var result []model.CharMistakes
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate mistakes: %w", err)
	}
	return result, nil
}

// MistakesBySession returns per-session mistakes for the selected characters.
func (s *Store) MistakesBySession(ctx context.Context, sessionIDs []int64, chars []string) (map[int64]map[string]int, error) {
	result := map[int64]map[string]int{}
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT session_id, char, mistakes
		FROM session_mistakes
		WHERE session_id IN (?) AND char IN (?)`, sessionIDs, chars)
	if err != nil {
		return nil, fmt.Errorf("failed to build mistakes query: %w", err)
	}
	var rows []struct {
		SessionID int64  `db:"session_id"`
		Char      string `db:"char"`
		Mistakes  int    `db:"mistakes"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list session mistakes: %w", err)
	}
	for _, r := range rows {
		if _, ok := result[r.SessionID]; !ok {
			result[r.SessionID] = map[string]int{}
		}
		result[r.SessionID][r.Char] = r.Mistakes
	}
	return result, nil
}
