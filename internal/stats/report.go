package stats

import (
	"context"

	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionRecord
	WindowSessionIDs []int64
	MistakesAll      []model.CharMistakes
	MistakesWindow   []model.CharMistakes
	CurveChars       []string
	PerSession       map[int64]map[string]int
}

// BuildReport loads and prepares data for stats rendering. curveChars selects how
// many of the most missed characters get their own curve.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig, curveChars int) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	all, err := st.MistakesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	window, err := st.MistakesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	chars := TopMistakeChars(all, curveChars)
	perSession, err := st.MistakesBySession(ctx, allIDs, chars)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		MistakesAll:      all,
		MistakesWindow:   window,
		CurveChars:       chars,
		PerSession:       perSession,
	}, nil
}

func sessionIDs(sessions []model.SessionRecord) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionRecord, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
