package animation

import "fmt"

// Action is a discrete animation control, independent of which key or
// client produced it.
type Action int

const (
	ActionTogglePause Action = iota
	ActionSpeedUp
	ActionSpeedDown
	ActionCycleMode
	ActionReset
	ActionCount // Sentinel value for array sizing
)

// actionNames double as the remote control wire names.
var actionNames = [ActionCount]string{"pause", "faster", "slower", "mode", "reset"}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction maps a wire name back to its Action.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}
