package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeflow/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRecordsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	body, err := st.LoadRecord(ctx, "progress")
	require.NoError(t, err)
	assert.Nil(t, body)

	require.NoError(t, st.SaveRecord(ctx, "progress", []byte(`{"xp":10}`)))
	require.NoError(t, st.SaveRecord(ctx, "progress", []byte(`{"xp":20}`)))
	body, err = st.LoadRecord(ctx, "progress")
	require.NoError(t, err)
	assert.JSONEq(t, `{"xp":20}`, string(body))
}

func insertTestSession(t *testing.T, st *Store, offset time.Duration, wpm int, mistakes map[string]int) int64 {
	t.Helper()
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC).Add(offset)
	id, err := st.InsertSession(context.Background(), model.SessionResult{
		Mode:                   model.ModeTimed,
		StartedAt:              start,
		EndedAt:                start.Add(30 * time.Second),
		WordsPerMinute:         wpm,
		AccuracyPercent:        95,
		CorrectCount:           100,
		IncorrectCount:         5,
		DurationSeconds:        30,
		MistakesByExpectedChar: mistakes,
	})
	require.NoError(t, err)
	return id
}

func TestSessionLog(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	first := insertTestSession(t, st, 0, 40, map[string]int{"a": 2, "b": 1})
	second := insertTestSession(t, st, time.Hour, 45, map[string]int{"a": 1})
	third := insertTestSession(t, st, 2*time.Hour, 50, nil)

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, first, sessions[0].ID)
	assert.Equal(t, "timed", sessions[0].Mode)
	assert.Equal(t, 40, sessions[0].WPM)
	assert.Equal(t, 30, sessions[0].DurationSeconds)
	assert.True(t, sessions[0].EndedAt.Equal(time.Date(2024, 1, 1, 8, 0, 30, 0, time.UTC)))

	last, err := st.ListSessions(ctx, model.StatsConfig{Last: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, []int64{second, third}, []int64{last[0].ID, last[1].ID})

	since := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	filtered, err := st.ListSessions(ctx, model.StatsConfig{Since: &since, Mode: "timed"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	none, err := st.ListSessions(ctx, model.StatsConfig{Mode: "quote"})
	require.NoError(t, err)
	assert.Empty(t, none)

	aggs, err := st.MistakesForSessions(ctx, []int64{first, second, third})
	require.NoError(t, err)
	assert.Equal(t, []model.CharMistakes{
		{Char: "a", Mistakes: 3, Sessions: 2},
		{Char: "b", Mistakes: 1, Sessions: 1},
	}, aggs)

	per, err := st.MistakesBySession(ctx, []int64{first, second}, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, map[int64]map[string]int{first: {"a": 2}, second: {"a": 1}}, per)
}

func TestDeleteRecordsKeepsFeedback(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveRecord(ctx, "history", []byte(`[]`)))
	insertTestSession(t, st, 0, 30, map[string]int{"x": 1})
	require.NoError(t, st.SaveFeedback(ctx, model.FeedbackEntry{
		ID:        "f-1",
		CreatedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		Liked:     "lessons",
		UserAgent: "typeflow/test",
	}))

	require.NoError(t, st.DeleteRecords(ctx))
	require.NoError(t, st.DeleteRecords(ctx))

	body, err := st.LoadRecord(ctx, "history")
	require.NoError(t, err)
	assert.Nil(t, body)
	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Empty(t, sessions)

	feedback, err := st.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.Equal(t, "lessons", feedback[0].Liked)
}

func TestFeedbackSentFlag(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveFeedback(ctx, model.FeedbackEntry{ID: "f-2", CreatedAt: created, Bugs: "none"}))
	require.NoError(t, st.MarkFeedbackSent(ctx, "f-2"))

	feedback, err := st.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.True(t, feedback[0].Sent)
	assert.True(t, feedback[0].CreatedAt.Equal(created))
	assert.Equal(t, "none", feedback[0].Bugs)
}
