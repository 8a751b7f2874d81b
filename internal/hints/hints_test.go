package hints

// ForBrowserConnect tests cannot use t.Parallel(): they call t.Setenv and
// swap the package-level IsInContainer.

import (
	"strings"
	"testing"
)

func TestForBrowserConnect_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	t.Setenv("CI", "true")
	t.Setenv("ROD_NO_SANDBOX", "")
	t.Setenv("ROD_BROWSER_BIN", "")

	hint := ForBrowserConnect()

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("ForBrowserConnect() = %q, want hint prefix", hint)
	}
	if !strings.Contains(hint, "ROD_NO_SANDBOX") {
		t.Error("expected ROD_NO_SANDBOX suggestion in CI")
	}
	if !strings.Contains(hint, "ROD_BROWSER_BIN") {
		t.Error("expected ROD_BROWSER_BIN suggestion")
	}
}

func TestForBrowserConnect_Configured(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("ROD_NO_SANDBOX", "1")
	t.Setenv("ROD_BROWSER_BIN", "/usr/bin/chromium")

	if hint := ForBrowserConnect(); hint != "" {
		t.Errorf("ForBrowserConnect() = %q, want empty when fully configured", hint)
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		searched []string
		want     string
	}{
		{
			name:     "suggests user config path",
			searched: []string{"club.yaml", "/home/u/.config/revista/club.yaml"},
			want:     "or create /home/u/.config/revista/club.yaml",
		},
		{
			name:     "windows separators",
			searched: []string{`C:\Users\u\AppData\Roaming\revista\club.yaml`},
			want:     `or create C:\Users\u\AppData\Roaming\revista\club.yaml`,
		},
		{
			name:     "no user path",
			searched: []string{"club.yaml"},
			want:     "use --config /path/to/file.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForConfigNotFound(tt.searched)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ForConfigNotFound() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"invalid pdf", ForInvalidPDF(), "%PDF-"},
		{"no source", ForNoSourcePDF(), "--keep-source"},
		{"asset store", ForAssetStore("/srv/assets"), "/srv/assets"},
		{"output dir", ForOutputDirectory(), "writable"},
	}

	for _, tt := range tests {
		if !strings.HasPrefix(tt.got, "\n  hint: ") || !strings.Contains(tt.got, tt.want) {
			t.Errorf("%s: hint = %q, want prefix and %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
}
