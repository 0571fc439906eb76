// Package tray provides the desktop system tray menu: the live rep count, the
// exercise picker, and detection and session controls.
package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/repcoach/internal/profile"
	"github.com/ayusman/repcoach/internal/session"
)

// Tray represents the system tray application.
type Tray struct {
	mu       sync.RWMutex
	enabled  bool
	exercise string
	count    int
	choices  []profile.Profile

	onToggle func(enabled bool)
	onSelect func(id string)
	onReset  func()
	onOpen   func()
	onQuit   func()

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuCount  *systray.MenuItem
	menuPicks  map[string]*systray.MenuItem
}

// New creates a Tray offering choices in the exercise menu. enabled is the
// detection state shown initially.
func New(choices []profile.Profile, enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		choices: choices,
	}
}

// OnToggle sets the callback for the detection toggle. Without one the toggle
// is shown disabled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSelect sets the callback for picking an exercise.
func (t *Tray) OnSelect(fn func(id string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnReset sets the callback for the reset counter item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpen sets the callback for opening the browser UI.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray event loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("RepCoach")
	systray.SetTooltip("RepCoach exercise counter")

	t.mu.Lock()
	t.menuCount = systray.AddMenuItem(countLabel(t.exercise, t.count), "Current exercise and repetitions")
	t.menuCount.Disable()
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleLabel(t.enabled), "Toggle camera detection")
	if t.onToggle == nil {
		t.menuToggle.Disable()
	}
	menuExercise := systray.AddMenuItem("Exercise", "Choose the exercise to count")
	t.menuPicks = make(map[string]*systray.MenuItem, len(t.choices))
	for _, p := range t.choices {
		item := menuExercise.AddSubMenuItemCheckbox(p.Name, p.ID, p.ID == t.exercise)
		t.menuPicks[p.ID] = item
		go t.watchPick(p.ID, item)
	}
	menuReset := systray.AddMenuItem("Reset counter", "Start counting from zero")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in browser...", "Open the web UI")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit RepCoach")
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watchPick(id string, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleSelect(id)
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	if t.onToggle == nil {
		t.mu.Unlock()
		return
	}
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleLabel(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSelect(id string) {
	t.mu.RLock()
	callback := t.onSelect
	t.mu.RUnlock()

	if callback != nil {
		callback(id)
	}
}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
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

// FrameProcessed implements session.Observer. The menu is only touched when
// the exercise or count changes.
func (t *Tray) FrameProcessed(out session.Output, _ time.Duration) {
	t.SetStatus(out.Exercise, out.Count)
}

// SetStatus shows exercise and count in the menu.
func (t *Tray) SetStatus(exercise string, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if exercise == t.exercise && count == t.count {
		return
	}
	changed := exercise != t.exercise
	t.exercise, t.count = exercise, count

	if t.menuCount != nil {
		t.menuCount.SetTitle(countLabel(exercise, count))
		systray.SetTitle(fmt.Sprintf("RepCoach %d", count))
	}
	if changed {
		for id, item := range t.menuPicks {
			if id == exercise {
				item.Check()
			} else {
				item.Uncheck()
			}
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Status returns the exercise and count currently displayed.
func (t *Tray) Status() (string, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.exercise, t.count
}

func toggleLabel(enabled bool) string {
	if enabled {
		return "● Detection on"
	}
	return "○ Detection off"
}

func countLabel(exercise string, count int) string {
	if exercise == "" {
		return "No exercise selected"
	}
	return fmt.Sprintf("%s: %d reps", exercise, count)
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
