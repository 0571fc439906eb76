package plugin

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/repcoach/internal/session"
)

// recorderPlugin installs a plugin that appends each request it receives to a
// file, one per line.
func recorderPlugin(t *testing.T, events ...Event) (*Manager, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	writeManifest(t, root, "recorder", Manifest{Name: "recorder", Executable: "run.sh", Events: events})

	out := filepath.Join(t.TempDir(), "events.log")
	script := "#!/bin/sh\ncat >> '" + out + "'\necho >> '" + out + "'\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(root, "recorder", "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	m := NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	return m, out
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestDispatcher_Events(t *testing.T) {
	m, out := recorderPlugin(t, EventRepCounted, EventSessionStarted)
	d := NewDispatcher(m, NewExecutor(5*time.Second), nil)

	now := time.Now()
	d.FrameProcessed(session.Output{Exercise: "knee_dominant", SessionID: "s1", Timestamp: now}, 0)
	d.FrameProcessed(session.Output{Exercise: "knee_dominant", SessionID: "s1", Timestamp: now}, 0)
	d.FrameProcessed(session.Output{Exercise: "knee_dominant", SessionID: "s1", Counted: true, Count: 1, Timestamp: now}, 0)
	d.FrameProcessed(session.Output{Exercise: "knee_dominant", SessionID: "s2", Timestamp: now}, 0)
	d.Close()

	lines := readLines(t, out)
	if len(lines) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"event":"session_started"`) || !strings.Contains(lines[0], `"session_id":"s1"`) {
		t.Errorf("first event = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"event":"rep_counted"`) || !strings.Contains(lines[1], `"count":1`) {
		t.Errorf("second event = %s", lines[1])
	}
	if !strings.Contains(lines[2], `"session_id":"s2"`) {
		t.Errorf("third event = %s", lines[2])
	}
}

func TestDispatcher_OnlySubscribedEvents(t *testing.T) {
	m, out := recorderPlugin(t, EventRepCounted)
	d := NewDispatcher(m, NewExecutor(5*time.Second), nil)

	d.FrameProcessed(session.Output{SessionID: "s1"}, 0)
	d.FrameProcessed(session.Output{SessionID: "s1", Counted: true, Count: 1}, 0)
	d.Close()

	lines := readLines(t, out)
	if len(lines) != 1 || !strings.Contains(lines[0], "rep_counted") {
		t.Errorf("events = %v, want one rep_counted", lines)
	}
}

func TestDispatcher_IgnoresOutputsWithoutSession(t *testing.T) {
	m, out := recorderPlugin(t, EventRepCounted, EventSessionStarted)
	d := NewDispatcher(m, NewExecutor(5*time.Second), nil)

	d.FrameProcessed(session.Output{Status: session.StatusIdle}, 0)
	d.Close()

	if lines := readLines(t, out); len(lines) != 0 {
		t.Errorf("events = %v, want none", lines)
	}
}

func TestDispatcher_CloseIsFinal(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), NewExecutor(time.Second), nil)
	d.Close()
	d.Close()

	// Frames after Close are ignored.
	d.FrameProcessed(session.Output{SessionID: "s1", Counted: true}, 0)
}
