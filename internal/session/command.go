package session

import "github.com/verte-zerg/typeflow/internal/model"

// Key names recognised by KeyDown. They match Bubble Tea key strings.
const (
	KeyBackspace = "backspace"
	KeyLeft      = "left"
	KeyTab       = "tab"
)

// Command is an input processed by Session.Apply.
type Command interface {
	command()
}

// TypeInput proposes a new value for the typed text.
type TypeInput struct {
	Value string
}

// KeyDown reports a key before it changes the input.
type KeyDown struct {
	Key      string
	CapsLock bool
}

// Focus reports that the input gained focus.
type Focus struct {
	CapsLock bool
}

// Blur reports that the input lost focus.
type Blur struct{}

// Tick is the one second timer. Ticks from an earlier epoch are ignored.
type Tick struct {
	Epoch int
}

// Reset returns to Pending with the same text.
type Reset struct{}

// Start returns to Pending with new text.
type Start struct {
	Text   model.Text
	Author string
}

func (TypeInput) command() {}
func (KeyDown) command()   {}
func (Focus) command()     {}
func (Blur) command()      {}
func (Tick) command()      {}
func (Reset) command()     {}
func (Start) command()     {}

// Event is emitted by Session.Apply.
type Event interface {
	event()
}

// Started is emitted on the Pending to Active transition. The host schedules
// Tick commands carrying Epoch while the session stays active.
type Started struct {
	SessionID string
	Epoch     int
}

// Ticked is emitted for every accepted tick.
type Ticked struct {
	Remaining int
}

// Ended carries the result of a clean end. It is emitted once per session.
type Ended struct {
	Result model.SessionResult
}

// Restarted is emitted when the session returns to Pending.
type Restarted struct {
	NewText bool
}

// Blocked is emitted when a key or edit would cross into the locked prefix.
type Blocked struct{}

// CapsLock reports whether the caps lock indicator should be visible.
type CapsLock struct {
	On bool
}

func (Started) event()   {}
func (Ticked) event()    {}
func (Ended) event()     {}
func (Restarted) event() {}
func (Blocked) event()   {}
func (CapsLock) event()  {}
