package config

import "sync"

// RuntimeSettings holds values the render loop reads every frame and the
// input handlers may change.
type RuntimeSettings struct {
	mu       sync.RWMutex
	fpsLimit int
	hud      bool
}

var globalRuntimeSettings = &RuntimeSettings{
	fpsLimit: 120, // default value
	hud:      true,
}

// GetFPSLimit returns the frame cap, 0 meaning uncapped
func GetFPSLimit() int {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.fpsLimit
}

// SetFPSLimit sets the frame cap
func SetFPSLimit(limit int) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalRuntimeSettings.fpsLimit = limit
}

// HUDVisible reports whether the text overlay is drawn
func HUDVisible() bool {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.hud
}

// SetHUDVisible shows or hides the text overlay
func SetHUDVisible(visible bool) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.hud = visible
}

// ToggleHUD flips overlay visibility
func ToggleHUD() {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.hud = !globalRuntimeSettings.hud
}

// Apply copies the runtime-mutable parts of c into the global settings.
func (c *Config) Apply() {
	SetFPSLimit(c.Window.FPSLimit)
	SetHUDVisible(c.HUD.Enabled)
}
