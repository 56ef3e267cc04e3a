package input

import (
	"sync"

	"fire-smoke/internal/animation"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical control, not a physical key
type Action int

// Action constants using iota
const (
	ActionTogglePause Action = iota
	ActionSpeedUp
	ActionSpeedDown
	ActionCycleMode
	ActionReset
	ActionQuit
	ActionSnapshot
	ActionToggleHUD
	ActionToggleProfiling
	ActionCount // Sentinel value for array sizing
)

// animationActions maps the controls the animation state machine owns.
// Host controls (quit, snapshot, overlays) are absent.
var animationActions = map[Action]animation.Action{
	ActionTogglePause: animation.ActionTogglePause,
	ActionSpeedUp:     animation.ActionSpeedUp,
	ActionSpeedDown:   animation.ActionSpeedDown,
	ActionCycleMode:   animation.ActionCycleMode,
	ActionReset:       animation.ActionReset,
}

// InputManager tracks keyboard state and maps physical keys to logical actions
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[glfw.Key][]Action

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed flags (reset each frame)
	justPressed [ActionCount]bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions: make(map[glfw.Key][]Action),
	}

	im.BindKey(glfw.KeySpace, ActionTogglePause)
	im.BindKey(glfw.KeyUp, ActionSpeedUp)
	im.BindKey(glfw.KeyEqual, ActionSpeedUp)
	im.BindKey(glfw.KeyKPAdd, ActionSpeedUp)
	im.BindKey(glfw.KeyDown, ActionSpeedDown)
	im.BindKey(glfw.KeyMinus, ActionSpeedDown)
	im.BindKey(glfw.KeyKPSubtract, ActionSpeedDown)
	im.BindKey(glfw.KeyC, ActionCycleMode)
	im.BindKey(glfw.KeyR, ActionReset)
	im.BindKey(glfw.KeyEscape, ActionQuit)
	im.BindKey(glfw.KeyP, ActionSnapshot)
	im.BindKey(glfw.KeyH, ActionToggleHUD)
	im.BindKey(glfw.KeyV, ActionToggleProfiling)

	return im
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., Up and =)
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// HandleKeyEvent processes a key event and updates internal state
// This can be called from a custom key callback
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.keyToActions[key]
	im.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press || action == glfw.Repeat

	im.mu.Lock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
	im.mu.Unlock()
}

// SetKeyCallback sets up the GLFW key callback for this input manager
// This should be called once during initialization
func (im *InputManager) SetKeyCallback(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
}

// PostUpdate must be called at the end of each frame to reset edge flags
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	for i := range ActionCount {
		im.justPressed[i] = false
	}
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// AnimationKeys reports the animation controls for animation.Controller.Tick:
// the level of each key now, plus every key pressed since the last PostUpdate.
// A key tapped and released within one frame shows up in Pressed only.
func (im *InputManager) AnimationKeys() animation.Keys {
	im.mu.RLock()
	defer im.mu.RUnlock()

	keys := animation.Keys{
		Held:    make(map[animation.Action]bool, len(animationActions)),
		Pressed: make(map[animation.Action]bool, len(animationActions)),
	}
	for act, anim := range animationActions {
		if im.currentState[act] {
			keys.Held[anim] = true
		}
		if im.justPressed[act] {
			keys.Pressed[anim] = true
		}
	}
	return keys
}
