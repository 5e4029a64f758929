package core

// State is the progress of a practice session
type State int

const (
	StateAwaitingMove State = iota // user to move
	StateCompleted                 // end of the line reached
)

func (s State) String() string {
	switch s {
	case StateAwaitingMove:
		return "awaiting_move"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

// ParseColor accepts "w", "b", "white" or "black"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	default:
		return 0, false
	}
}

func (c Color) String() string {
	return string(c)
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}
