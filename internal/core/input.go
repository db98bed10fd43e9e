package core

// Action represents a semantic input, abstracted from physical key presses.
type Action int

const (
	ActionNone      Action = iota
	ActionUp               // move cursor up
	ActionDown             // move cursor down
	ActionLeft             // move cursor left
	ActionRight            // move cursor right
	ActionCycle            // rotate the direction under the cursor
	ActionSetUp            // write Up under the cursor
	ActionSetRight         // write Right under the cursor
	ActionSetDown          // write Down under the cursor
	ActionSetLeft          // write Left under the cursor
	ActionSetNone          // write None under the cursor
	ActionUndo             // revert the last edit of this turn
	ActionAutopilot        // let the baseline router fill the mask
	ActionConfirm          // end the router turn
	ActionBack             // leave to the menu
	ActionRestart          // new episode after game over
	ActionQuit             // exit the program
	ActionPause            // toggle pause
)

var actionNames = map[Action]string{
	ActionNone:      "None",
	ActionUp:        "Up",
	ActionDown:      "Down",
	ActionLeft:      "Left",
	ActionRight:     "Right",
	ActionCycle:     "Cycle",
	ActionSetUp:     "SetUp",
	ActionSetRight:  "SetRight",
	ActionSetDown:   "SetDown",
	ActionSetLeft:   "SetLeft",
	ActionSetNone:   "SetNone",
	ActionUndo:      "Undo",
	ActionAutopilot: "Autopilot",
	ActionConfirm:   "Confirm",
	ActionBack:      "Back",
	ActionRestart:   "Restart",
	ActionQuit:      "Quit",
	ActionPause:     "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame holds the actions triggered during one platform tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
