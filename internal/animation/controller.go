package animation

import "fire-smoke/internal/compositor"

// Keys is one tick's view of the animation controls. Held is the level each
// key is at now. Pressed marks keys that saw a down transition since the
// previous tick, which catches a release and re-press between two polls.
// Hosts that only poll levels leave Pressed nil.
type Keys struct {
	Held    map[Action]bool
	Pressed map[Action]bool
}

// Controller is the single writer of State. The render loop calls Tick once
// per frame and hands the returned Frame to every pixel evaluation.
type Controller struct {
	state State
	edges *EdgeTracker[Action]
}

func NewController() *Controller {
	return &Controller{
		state: NewState(),
		edges: NewEdgeTracker[Action](),
	}
}

// Tick advances the clock to now, fires each action once if its held level
// rose or it was pressed since the previous tick, then applies queued
// actions (from remote clients) in order.
func (c *Controller) Tick(now float64, keys Keys, queued ...Action) compositor.Frame {
	c.state.Advance(now)
	for a := Action(0); a < ActionCount; a++ {
		rose := c.edges.Rising(a, keys.Held[a])
		if rose || keys.Pressed[a] {
			c.state.Apply(a)
		}
	}
	for _, a := range queued {
		c.state.Apply(a)
	}
	return c.state.Frame()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}
