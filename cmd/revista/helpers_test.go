package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestEnv returns an Environment backed by vars and two buffers.
func newTestEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, &stdout, &stderr
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
	return path
}

const simpleDoc = `{
  "schema": "magazine-doc@1",
  "pages": [{
    "id": "p-0",
    "layers": [{"id": "main", "items": [
      {"id": "t1", "type": "TextFrame", "rect": {"x": 40, "y": 40, "w": 300, "h": 60}, "text": "Hola"}
    ]}]
  }],
  "meta": {"title": "Prueba"}
}`
