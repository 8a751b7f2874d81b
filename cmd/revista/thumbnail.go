package main

import (
	"context"
	"fmt"
	"time"

	revista "github.com/larabashadi/Revista-2"
)

// runThumbnail implements "revista thumbnail".
func runThumbnail(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseThumbnailFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	input, err := singleInput(rest, "thumbnail")
	if err != nil {
		printThumbnailUsage(env.Stderr)
		return err
	}
	timeout, err := parseTimeout(f.timeout)
	if err != nil {
		return err
	}
	if f.width < 0 {
		return fmt.Errorf("%w: --width must not be negative", ErrUsage)
	}

	s, err := newSession(f.common, f.store, env)
	if err != nil {
		return err
	}
	if f.width > 0 {
		s.cfg.Thumbnail.Width = f.width
	}

	doc, err := readDocumentFile(input)
	if err != nil {
		return err
	}

	conv, err := revista.NewConverter(s.converterOptions(timeout)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	png, err := conv.Thumbnail(ctx, doc)
	if err != nil {
		return err
	}

	out := outputPath(input, f.output, ".png")
	if err := writeOutput(out, png); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", out)
	}
	return nil
}

// parseTimeout parses a --timeout value. Empty means the default.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid timeout %q: %v", ErrUsage, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrUsage, s)
	}
	return d, nil
}
