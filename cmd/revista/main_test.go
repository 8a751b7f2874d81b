package main

import (
	"context"
	"strings"
	"testing"

	revista "github.com/larabashadi/Revista-2"
)

// wrongTypeImporter is an Importer that is NOT *revista.Converter.
type wrongTypeImporter struct{}

func (wrongTypeImporter) Import(context.Context, []byte, revista.ImportOptions) (*revista.ImportResult, error) {
	return &revista.ImportResult{Document: revista.NewDocument()}, nil
}

func TestPoolAdapter_Release_WrongType(t *testing.T) {
	t.Parallel()

	pool, err := revista.NewConverterPool(1)
	if err != nil {
		t.Fatalf("NewConverterPool() error = %v", err)
	}
	defer pool.Close()

	adapter := &poolAdapter{pool: pool}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for wrong type, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if !strings.Contains(msg, "unexpected type") {
			t.Errorf("panic message should contain 'unexpected type', got %q", msg)
		}
	}()

	adapter.Release(wrongTypeImporter{})
}

func TestPoolAdapter_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool, err := revista.NewConverterPool(2)
	if err != nil {
		t.Fatalf("NewConverterPool() error = %v", err)
	}
	adapter := &poolAdapter{pool: pool}

	if adapter.Size() != 2 {
		t.Errorf("Size() = %d, want 2", adapter.Size())
	}
	imp := adapter.Acquire()
	if imp == nil {
		t.Fatal("Acquire() = nil")
	}
	adapter.Release(imp)

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if imp := adapter.Acquire(); imp != nil {
		t.Errorf("Acquire() after Close = %v, want a nil interface", imp)
	}
}

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		vars         map[string]string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage",
			args:         []string{"revista"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: revista"},
		},
		{
			name:         "version",
			args:         []string{"revista", "version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"revista dev"},
		},
		{
			name:         "help",
			args:         []string{"revista", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: revista", "Commands:", "thumbnail"},
		},
		{
			name:         "help import",
			args:         []string{"revista", "help", "import"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: revista import", "--keep-source"},
		},
		{
			name:         "help for unknown command",
			args:         []string{"revista", "help", "merge"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: merge"},
		},
		{
			name:         "unknown command",
			args:         []string{"revista", "convert"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: convert"},
		},
		{
			name:     "subcommand -h",
			args:     []string{"revista", "export", "-h"},
			wantCode: ExitSuccess,
		},
		{
			name:         "bad flag",
			args:         []string{"revista", "export", "--nope"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"invalid usage"},
		},
		{
			name:         "unknown env var warns",
			args:         []string{"revista", "import"},
			vars:         map[string]string{"REVISTA_STYLE": "x"},
			wantCode:     ExitIO,
			wantInStderr: []string{"unknown environment variable REVISTA_STYLE", "no input specified"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv(tt.vars)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
		})
	}
}

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := dir + "/store"
	doc := writeFile(t, dir, "doc.json", simpleDoc)
	empty := writeFile(t, dir, "empty.json", `{"pages": []}`)
	broken := writeFile(t, dir, "broken.json", `{"pages": [`)
	notPDF := writeFile(t, dir, "notes.pdf", "just text")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"export missing file", []string{"revista", "export", dir + "/missing.json", "-s", store}, ExitIO},
		{"export no pages", []string{"revista", "export", empty, "-s", store}, ExitInvalidInput},
		{"export broken json", []string{"revista", "export", broken, "-s", store}, ExitInvalidInput},
		{"export bad quality", []string{"revista", "export", doc, "-s", store, "--quality", "hd", "-o", dir + "/q.pdf"}, ExitUsage},
		{"export two inputs", []string{"revista", "export", doc, doc}, ExitUsage},
		{"import no input", []string{"revista", "import"}, ExitIO},
		{"import bad preset", []string{"revista", "import", notPDF, "-s", store, "--preset", "ocr"}, ExitUsage},
		{"import not a pdf", []string{"revista", "import", notPDF, "-s", store, "-o", dir + "/out"}, ExitInvalidInput},
		{"detect without source", []string{"revista", "detect", doc, "1", "-s", store}, ExitInvalidInput},
		{"detect bad page", []string{"revista", "detect", doc, "0"}, ExitUsage},
		{"detect missing page", []string{"revista", "detect", doc}, ExitUsage},
		{"thumbnail bad timeout", []string{"revista", "thumbnail", doc, "--timeout", "soon"}, ExitUsage},
		{"thumbnail negative width", []string{"revista", "thumbnail", doc, "--width", "-5"}, ExitUsage},
		{"missing config", []string{"revista", "export", doc, "-c", "nonexistent-revista-config"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := newTestEnv(nil)
			code := runMain(tt.args, env)
			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args[1:], code, tt.wantCode, stderr.String())
			}
		})
	}
}
