// Package main provides a plugin that appends counting events to a JSON lines
// file, one object per line.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event     string          `json:"event"`
	Exercise  string          `json:"exercise"`
	SessionID string          `json:"session_id"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
	Config    json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Entry is one line of the log.
type Entry struct {
	Time      time.Time `json:"time"`
	Event     string    `json:"event"`
	Exercise  string    `json:"exercise"`
	SessionID string    `json:"session_id"`
	Count     int       `json:"count"`
}

const defaultPath = "~/.repcoach/reps.jsonl"

func main() {
	json.NewEncoder(os.Stdout).Encode(handle(os.Stdin))
}

func handle(r io.Reader) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return failure(fmt.Errorf("failed to decode request: %w", err))
	}

	var cfg struct {
		Path string `json:"path"`
	}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return failure(fmt.Errorf("invalid config: %w", err))
		}
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}

	path, err := expandHome(cfg.Path)
	if err != nil {
		return failure(err)
	}
	if err := appendEntry(path, Entry{
		Time:      req.Timestamp,
		Event:     req.Event,
		Exercise:  req.Exercise,
		SessionID: req.SessionID,
		Count:     req.Count,
	}); err != nil {
		return failure(err)
	}
	return Response{Success: true}
}

func appendEntry(path string, e Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(e)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

func failure(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
