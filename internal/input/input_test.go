package input

import (
	"testing"

	"fire-smoke/internal/animation"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestAnimationKeysRepressBeforePoll(t *testing.T) {
	im := NewInputManager()
	c := animation.NewController()

	im.HandleKeyEvent(glfw.KeyC, glfw.Press)
	f := c.Tick(0, im.AnimationKeys())
	im.PostUpdate()
	assert.Equal(t, "lava", f.Mode.String())

	// release and press again between two polls: the level reads down both times
	im.HandleKeyEvent(glfw.KeyC, glfw.Release)
	im.HandleKeyEvent(glfw.KeyC, glfw.Press)
	keys := im.AnimationKeys()
	assert.True(t, keys.Held[animation.ActionCycleMode])
	assert.True(t, keys.Pressed[animation.ActionCycleMode])

	f = c.Tick(0.016, keys)
	im.PostUpdate()
	assert.Equal(t, "blue", f.Mode.String())

	// auto-repeat is not a new press
	im.HandleKeyEvent(glfw.KeyC, glfw.Repeat)
	f = c.Tick(0.032, im.AnimationKeys())
	assert.Equal(t, "blue", f.Mode.String())
}

func TestAnimationKeysTapWithinFrame(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeySpace, glfw.Press)
	im.HandleKeyEvent(glfw.KeySpace, glfw.Release)

	keys := im.AnimationKeys()
	assert.False(t, keys.Held[animation.ActionTogglePause])
	assert.True(t, keys.Pressed[animation.ActionTogglePause])

	im.PostUpdate()
	assert.Empty(t, im.AnimationKeys().Pressed)
}

func TestHostActionsStayOutOfAnimationKeys(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyEscape, glfw.Press)
	im.HandleKeyEvent(glfw.KeyP, glfw.Press)

	assert.True(t, im.JustPressed(ActionQuit))
	assert.True(t, im.JustPressed(ActionSnapshot))
	keys := im.AnimationKeys()
	assert.Empty(t, keys.Held)
	assert.Empty(t, keys.Pressed)
}

func TestSharedBindings(t *testing.T) {
	im := NewInputManager()
	for _, k := range []glfw.Key{glfw.KeyUp, glfw.KeyEqual, glfw.KeyKPAdd} {
		im.HandleKeyEvent(k, glfw.Press)
		assert.True(t, im.JustPressed(ActionSpeedUp), "key %v", k)
		im.HandleKeyEvent(k, glfw.Release)
		im.PostUpdate()
	}
}
