// Package finger implements the finger placement drill.
package finger

import (
	"math"
	"math/rand"
	"strings"

	"github.com/verte-zerg/typeflow/internal/catalog"
)

// Engine tracks one finger drill. In exploration mode any mapped key is shown
// with its finger; in drill mode a random target key must be pressed.
type Engine struct {
	rnd     *rand.Rand
	keys    []string
	current string
	active  bool
	correct int
	wrong   int
}

// Result of a key press.
type Result int

// Press results.
const (
	Ignored Result = iota
	Shown
	Correct
	Wrong
)

// New returns an engine in exploration mode.
func New(src rand.Source) *Engine {
	return &Engine{rnd: rand.New(src), keys: catalog.PracticeKeys}
}

// Start enters drill mode with zeroed counters and a fresh target.
func (e *Engine) Start() {
	e.active = true
	e.correct = 0
	e.wrong = 0
	e.next()
}

// Stop returns to exploration mode and clears the target.
func (e *Engine) Stop() {
	e.active = false
	e.current = ""
	e.correct = 0
	e.wrong = 0
}

func (e *Engine) next() {
	e.current = e.keys[e.rnd.Intn(len(e.keys))]
}

// Press handles one key.
func (e *Engine) Press(key string) Result {
	key = strings.ToLower(key)
	_, mapped := catalog.FingerMap[key]
	if !e.active {
		if !mapped {
			return Ignored
		}
		e.current = key
		return Shown
	}
	if key == e.current {
		e.correct++
		e.next()
		return Correct
	}
	e.wrong++
	return Wrong
}

// Active reports whether a drill is running.
func (e *Engine) Active() bool { return e.active }

// Target returns the key to press and its finger.
func (e *Engine) Target() (string, catalog.Finger, bool) {
	if e.current == "" {
		return "", 0, false
	}
	return e.current, catalog.FingerMap[e.current], true
}

// Counts returns correct and wrong presses.
func (e *Engine) Counts() (int, int) { return e.correct, e.wrong }

// Accuracy is 100 before any press.
func (e *Engine) Accuracy() int {
	total := e.correct + e.wrong
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(e.correct) / float64(total) * 100))
}
