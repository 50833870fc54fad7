package progress

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// Rating labels for a finished test.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingNeedsWork = "Needs Work"
)

// RunningAverage folds value into an average over count previous samples.
func RunningAverage(avg, count, value int) int {
	next := int(math.Round(float64(avg*count+value) / float64(count+1)))
	if next < 0 {
		return 0
	}
	if next > 100 {
		return 100
	}
	return next
}

// NextStreak returns the streak after practicing on today.
func NextStreak(streak int, lastDate string, today time.Time) int {
	if lastDate == "" {
		return 1
	}
	switch lastDate {
	case today.Format(dateLayout):
		if streak < 1 {
			return 1
		}
		return streak
	case today.AddDate(0, 0, -1).Format(dateLayout):
		return streak + 1
	default:
		return 1
	}
}

// TestXP is the XP for a finished free typing test.
func TestXP(wpm, accuracy int) int {
	xp := int(math.Floor(float64(wpm) * 2))
	switch {
	case accuracy >= 95:
		xp += 50
	case accuracy >= 90:
		xp += 30
	case accuracy >= 85:
		xp += 15
	}
	return xp
}

// Rate labels a test result.
func Rate(wpm, accuracy int) string {
	switch {
	case accuracy >= 95 && wpm >= 40:
		return RatingExcellent
	case accuracy >= 85 && wpm >= 30:
		return RatingGood
	default:
		return RatingNeedsWork
	}
}
