// Package main provides a plugin that speaks the repetition count aloud.
// It uses say on macOS and espeak elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event    string          `json:"event"`
	Exercise string          `json:"exercise"`
	Count    int             `json:"count"`
	Config   json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config is read from the manifest.
type Config struct {
	// Every announces only counts divisible by it.
	Every int    `json:"every"`
	Voice string `json:"voice"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	cfg := Config{Every: 1}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(fmt.Errorf("invalid config: %w", err))
			return
		}
	}

	text := phrase(req, cfg)
	if text == "" {
		writeResponse(nil)
		return
	}
	writeResponse(speak(text, cfg.Voice))
}

// phrase returns what to say for req, or "" when nothing should be said.
func phrase(req Request, cfg Config) string {
	switch req.Event {
	case "session_started":
		name := strings.ReplaceAll(req.Exercise, "_", " ")
		return "Starting " + name
	case "rep_counted":
		if cfg.Every > 1 && req.Count%cfg.Every != 0 {
			return ""
		}
		return fmt.Sprintf("%d", req.Count)
	}
	return ""
}

func speak(text, voice string) error {
	bin := "espeak"
	if runtime.GOOS == "darwin" {
		bin = "say"
	}

	// Both programs take the voice with -v.
	args := []string{text}
	if voice != "" {
		args = []string{"-v", voice, text}
	}

	output, err := exec.Command(bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
