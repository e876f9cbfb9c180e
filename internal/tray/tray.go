// Package tray provides the system tray control panel: shape and color
// pickers, the live status line, a pause toggle and quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/zenparticles/internal/gesture"
	"github.com/ayusman/zenparticles/internal/shape"
)

// Tray is the control panel. Callbacks are invoked on the tray's event
// goroutine.
type Tray struct {
	onShape  func(shape.Type)
	onColor  func(hex string)
	onToggle func(enabled bool)
	onQuit   func()

	palette []string
	shape   shape.Type
	color   string
	enabled bool
	status  string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuToggle *systray.MenuItem
	shapeItems map[shape.Type]*systray.MenuItem
	colorItems map[string]*systray.MenuItem
}

// New creates a Tray offering the given colors, with shape and color
// preselected.
func New(palette []string, initial shape.Type, color string) *Tray {
	return &Tray{
		palette:    palette,
		shape:      initial,
		color:      color,
		enabled:    true,
		status:     gesture.Status{}.Text(),
		shapeItems: make(map[shape.Type]*systray.MenuItem),
		colorItems: make(map[string]*systray.MenuItem),
	}
}

// OnShape sets the callback for a shape selection.
func (t *Tray) OnShape(fn func(shape.Type)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onShape = fn
}

// OnColor sets the callback for a color selection.
func (t *Tray) OnColor(fn func(hex string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onColor = fn
}

// OnToggle sets the callback for the pause toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Zen")
	systray.SetTooltip("Zen Particles")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Hand tracking status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuShapes := systray.AddMenuItem("Shape", "Target shape")
	for _, s := range shape.All() {
		item := menuShapes.AddSubMenuItemCheckbox(s.String(), "Morph to "+s.String(), s == t.shape)
		t.shapeItems[s] = item
		go t.watch(item.ClickedCh, func() { t.selectShape(s) })
	}

	menuColors := systray.AddMenuItem("Color", "Particle color")
	for _, hex := range t.palette {
		item := menuColors.AddSubMenuItemCheckbox(hex, "Use "+hex, hex == t.color)
		t.colorItems[hex] = item
		go t.watch(item.ClickedCh, func() { t.selectColor(hex) })
	}
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand tracking")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Zen Particles")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watch(ch <-chan struct{}, fn func()) {
	for range ch {
		fn()
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func (t *Tray) selectShape(s shape.Type) {
	t.mu.Lock()
	t.markShape(s)
	callback := t.onShape
	t.mu.Unlock()

	if callback != nil {
		callback(s)
	}
}

func (t *Tray) selectColor(hex string) {
	t.mu.Lock()
	t.markColor(hex)
	callback := t.onColor
	t.mu.Unlock()

	if callback != nil {
		callback(hex)
	}
}

// markShape, markColor and markEnabled update state and menu items.
// Callers hold t.mu.
func (t *Tray) markShape(s shape.Type) {
	t.shape = s
	for k, item := range t.shapeItems {
		setChecked(item, k == s)
	}
}

func (t *Tray) markColor(hex string) {
	t.color = hex
	for k, item := range t.colorItems {
		setChecked(item, k == hex)
	}
}

func (t *Tray) markEnabled(enabled bool) {
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	enabled := !t.enabled
	t.markEnabled(enabled)
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetStatus updates the status line. Safe before the tray is ready.
func (t *Tray) SetStatus(s gesture.Status) {
	text := s.Text()
	if s.Active && s.Mode == gesture.ModeZoom {
		text = fmt.Sprintf("%s %.0f%%", text, s.ZoomFactor*100)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = text
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(text)
	}
}

// SetShape reflects a shape chosen outside the tray. No callback runs.
func (t *Tray) SetShape(s shape.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markShape(s)
}

// SetColor reflects a color chosen outside the tray. No callback runs.
func (t *Tray) SetColor(hex string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markColor(hex)
}

// SetEnabled reflects a pause or resume made outside the tray. No callback
// runs.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markEnabled(enabled)
}

// StatusText returns the status line.
func (t *Tray) StatusText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Shape returns the selected shape.
func (t *Tray) Shape() shape.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shape
}

// Color returns the selected color.
func (t *Tray) Color() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.color
}

// IsEnabled returns whether tracking is enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
