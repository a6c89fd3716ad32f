package game

type State int

const (
	Ready State = iota
	Running
	Animating
	Paused
	Lost
)

var stateNames = [...]string{
	Ready:     "READY",
	Running:   "RUNNING",
	Animating: "ANIMATING",
	Paused:    "PAUSED",
	Lost:      "LOST",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

type Action int

const (
	AnyKey Action = iota
	Quit
	Pause
	Restart
	Left
	Right
	Rotate
	SoftDrop
	HardDrop
)

var actionNames = [...]string{
	AnyKey:   "any",
	Quit:     "quit",
	Pause:    "pause",
	Restart:  "restart",
	Left:     "left",
	Right:    "right",
	Rotate:   "rotate",
	SoftDrop: "soft-drop",
	HardDrop: "hard-drop",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Outcome tells the driver of a Session what an action requires from it.
type Outcome int

const (
	Ignored Outcome = iota
	Applied
	// Exit the program.
	Exit
	// Start the hard drop animation loop.
	Animate
)
