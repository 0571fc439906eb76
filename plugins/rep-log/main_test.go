package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandle_AppendsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reps.jsonl")
	cfg, _ := json.Marshal(map[string]string{"path": path})

	for i, event := range []string{"session_started", "rep_counted"} {
		req, _ := json.Marshal(Request{Event: event, Exercise: "elbow_dominant", SessionID: "s1", Count: i, Config: cfg})
		if resp := handle(strings.NewReader(string(req))); !resp.Success {
			t.Fatalf("handle(%s) failed: %s", event, resp.Error)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("log not written: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad log line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Event != "rep_counted" || entries[1].Count != 1 || entries[1].Exercise != "elbow_dominant" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestHandle_BadRequest(t *testing.T) {
	if resp := handle(strings.NewReader("{")); resp.Success || resp.Error == "" {
		t.Errorf("handle(bad json) = %+v, want failure", resp)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandHome("~/x/y")
	if err != nil || got != filepath.Join(home, "x", "y") {
		t.Errorf("expandHome() = %q, %v", got, err)
	}
	if got, _ := expandHome("/abs"); got != "/abs" {
		t.Errorf("expandHome(/abs) = %q", got)
	}
}
