package main

import (
	"context"
	"fmt"

	revista "github.com/larabashadi/Revista-2"
)

// runExport implements "revista export".
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	input, err := singleInput(rest, "export")
	if err != nil {
		printExportUsage(env.Stderr)
		return err
	}

	s, err := newSession(f.common, f.store, env)
	if err != nil {
		return err
	}

	doc, err := readDocumentFile(input)
	if err != nil {
		return err
	}

	logo := f.logo
	if logo == "" {
		logo = s.cfg.Export.Logo
	}
	if n := revista.ResolveLockedLogos(doc, revista.AssetID(logo)); n > 0 {
		s.log.Debug("logo stamps resolved", revista.Int("count", n))
	}

	quality := f.quality
	if quality == "" {
		quality = s.cfg.Export.Quality
	}

	conv, err := revista.NewConverter(s.converterOptions(0)...)
	if err != nil {
		return err
	}
	defer conv.Close()

	res, err := conv.Render(ctx, doc, revista.RenderOptions{
		Quality:   revista.Quality(quality),
		Watermark: f.watermark || s.cfg.Export.Watermark,
		Title:     f.title,
	})
	if err != nil {
		return err
	}

	out := outputPath(input, f.output, ".pdf")
	if err := writeOutput(out, res.PDF); err != nil {
		return err
	}

	printWarnings(env.Stderr, input, res.Warnings)
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s (%d pages)\n", out, res.Pages)
	}
	return nil
}

// singleInput returns the only positional argument.
func singleInput(args []string, cmd string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	}
	return "", fmt.Errorf("%w: %s takes one document, got %d arguments", ErrUsage, cmd, len(args))
}

// readDocumentFile reads and parses a document JSON file.
func readDocumentFile(path string) (*revista.Document, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := revista.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
