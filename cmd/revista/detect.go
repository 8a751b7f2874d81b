package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/pretty"

	revista "github.com/larabashadi/Revista-2"
)

// runDetect implements "revista detect".
func runDetect(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseDetectFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		printDetectUsage(env.Stderr)
		return ErrNoInput
	}
	if len(rest) != 2 {
		printDetectUsage(env.Stderr)
		return fmt.Errorf("%w: detect takes a document and a page number", ErrUsage)
	}
	input := rest[0]
	page, err := parsePageNumber(rest[1])
	if err != nil {
		return err
	}

	s, err := newSession(f.common, f.store, env)
	if err != nil {
		return err
	}

	raw, err := readInput(input)
	if err != nil {
		return err
	}
	doc, err := revista.ParseDocument(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	conv, err := revista.NewConverter(s.converterOptions(0)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	var ov *revista.Overlay
	if f.pdf != "" {
		data, err := readInput(f.pdf)
		if err != nil {
			return err
		}
		ov, err = conv.Detect(ctx, data, page)
		if err != nil {
			return err
		}
	} else {
		ov, err = conv.DetectFromStore(ctx, doc, page)
		if err != nil {
			return err
		}
	}
	printWarnings(env.Stderr, input, ov.Warnings)

	if !f.write {
		var out bytes.Buffer
		enc := json.NewEncoder(&out)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(ov); err != nil {
			return fmt.Errorf("encoding overlay: %w", err)
		}
		_, err = env.Stdout.Write(pretty.Pretty(out.Bytes()))
		return err
	}

	merged, err := revista.MergeDetectedJSON(raw, page, ov)
	if err != nil {
		return err
	}
	if err := writeOutput(input, merged); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Updated %s page %d (%d text, %d images, ocr needed: %t)\n",
			input, page+1, len(ov.Text), len(ov.Images), ov.Meta.OCRNeeded)
	}
	return nil
}

// parsePageNumber converts a 1-based page argument to a page index.
func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: page must be a positive number, got %q", ErrUsage, s)
	}
	return n - 1, nil
}
