package session

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/ayusman/repcoach/"

// TestEngineIsFreeOfCgo walks the non-test imports of this package and every
// module package it reaches and fails if any of them pulls in OpenCV.
func TestEngineIsFreeOfCgo(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		t.Fatal(err)
	}

	seen := map[string]bool{}
	var visit func(rel, via string)
	visit = func(rel, via string) {
		if seen[rel] {
			return
		}
		seen[rel] = true

		entries, err := os.ReadDir(filepath.Join(root, rel))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(root, rel, name), nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("parse %s: %v", name, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				if strings.HasPrefix(path, "gocv.io/") {
					t.Errorf("%s/%s imports %s (reached via %s)", rel, name, path, via)
				}
				if strings.HasPrefix(path, modulePath) {
					visit(strings.TrimPrefix(path, modulePath), rel)
				}
			}
		}
	}

	visit(filepath.Join("internal", "session"), "session")

	for _, pkg := range []string{"internal/pose", "internal/geometry", "internal/signal", "internal/counter", "internal/profile"} {
		if !seen[filepath.FromSlash(pkg)] && !seen[pkg] {
			t.Errorf("expected %s to be reachable from session", pkg)
		}
	}
}
