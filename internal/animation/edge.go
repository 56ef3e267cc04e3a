package animation

// EdgeTracker turns polled key-down levels into press events. It remembers
// the previous level per key so a held key fires once.
type EdgeTracker[K comparable] struct {
	prev map[K]bool
}

func NewEdgeTracker[K comparable]() *EdgeTracker[K] {
	return &EdgeTracker[K]{prev: make(map[K]bool)}
}

// Rising records down as the current level of k and reports whether k went
// from up to down since the last call.
func (e *EdgeTracker[K]) Rising(k K, down bool) bool {
	was := e.prev[k]
	e.prev[k] = down
	return down && !was
}

// Reset forgets every key.
func (e *EdgeTracker[K]) Reset() {
	clear(e.prev)
}
