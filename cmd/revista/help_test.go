package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)

	for cmd := range commands {
		if !strings.Contains(buf.String(), "  "+cmd) {
			t.Errorf("usage should list %q", cmd)
		}
	}
}

func TestCommandUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd   string
		wants []string
	}{
		{cmd: "import", wants: []string{"revista import", "--preset", "--out-dir", "--keep-source", "--workers", "--store"}},
		{cmd: "export", wants: []string{"revista export", "--output", "--quality", "--watermark", "--logo", "--title"}},
		{cmd: "detect", wants: []string{"revista detect", "<page>", "--pdf", "--write"}},
		{cmd: "thumbnail", wants: []string{"revista thumbnail", "--width", "--timeout"}},
	}

	for _, tt := range tests {
		usage, ok := commandUsage[tt.cmd]
		if !ok {
			t.Errorf("no usage for %q", tt.cmd)
			continue
		}
		if _, ok := commands[tt.cmd]; !ok {
			t.Errorf("usage for %q but no command", tt.cmd)
		}

		var buf bytes.Buffer
		usage(&buf)
		for _, want := range tt.wants {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("%s usage missing %q", tt.cmd, want)
			}
		}
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	env, stdout, _ := newTestEnv(nil)
	if code := runHelp([]string{"detect"}, env); code != ExitSuccess {
		t.Errorf("runHelp(detect) = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout.String(), "revista detect") {
		t.Errorf("stdout = %q, want detect usage", stdout.String())
	}

	env, _, stderr := newTestEnv(nil)
	if code := runHelp([]string{"nope"}, env); code != ExitUsage {
		t.Errorf("runHelp(nope) = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "unknown command: nope") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
