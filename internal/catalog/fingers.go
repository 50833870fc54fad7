package catalog

// Finger identifies the finger that should press a key.
type Finger int

// Fingers, left to right.
const (
	LeftPinky Finger = iota
	LeftRing
	LeftMiddle
	LeftIndex
	RightIndex
	RightMiddle
	RightRing
	RightPinky
)

var fingerNames = [...]string{
	LeftPinky:   "Left Pinky",
	LeftRing:    "Left Ring",
	LeftMiddle:  "Left Middle",
	LeftIndex:   "Left Index",
	RightIndex:  "Right Index",
	RightMiddle: "Right Middle",
	RightRing:   "Right Ring",
	RightPinky:  "Right Pinky",
}

func (f Finger) String() string {
	if f < 0 || int(f) >= len(fingerNames) {
		return "Unknown"
	}
	return fingerNames[f]
}

// KeyboardRows is the QWERTY layout used by the heatmap and finger drills.
var KeyboardRows = [][]string{
	{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "-", "="},
	{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p", "[", "]"},
	{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'"},
	{"z", "x", "c", "v", "b", "n", "m", ",", ".", "/"},
}

// FingerMap maps a lowercase key to its finger on a touch-typing layout.
var FingerMap = map[string]Finger{
	"1": LeftPinky, "q": LeftPinky, "a": LeftPinky, "z": LeftPinky,
	"2": LeftRing, "w": LeftRing, "s": LeftRing, "x": LeftRing,
	"3": LeftMiddle, "e": LeftMiddle, "d": LeftMiddle, "c": LeftMiddle,
	"4": LeftIndex, "r": LeftIndex, "f": LeftIndex, "v": LeftIndex,
	"5": LeftIndex, "t": LeftIndex, "g": LeftIndex, "b": LeftIndex,
	"6": RightIndex, "y": RightIndex, "h": RightIndex, "n": RightIndex,
	"7": RightIndex, "u": RightIndex, "j": RightIndex, "m": RightIndex,
	"8": RightMiddle, "i": RightMiddle, "k": RightMiddle, ",": RightMiddle,
	"9": RightRing, "o": RightRing, "l": RightRing, ".": RightRing,
	"0": RightPinky, "p": RightPinky, ";": RightPinky, "/": RightPinky,
	"-": RightPinky, "=": RightPinky, "[": RightPinky, "]": RightPinky, "'": RightPinky,
}

// PracticeKeys are the keys drawn by the finger drill.
var PracticeKeys = []string{
	"a", "s", "d", "f", "g", "h", "j", "k", "l", ";",
	"q", "w", "e", "r", "t", "y", "u", "i", "o", "p",
	"z", "x", "c", "v", "b", "n", "m", ",", ".",
}
