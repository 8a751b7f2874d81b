package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// importFlags holds flags for the import command.
type importFlags struct {
	common     commonFlags
	preset     string
	mode       string
	store      string
	outDir     string
	keepSource bool
	workers    int
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common    commonFlags
	store     string
	output    string
	quality   string
	logo      string
	title     string
	watermark bool
}

// detectFlags holds flags for the detect command.
type detectFlags struct {
	common commonFlags
	store  string
	pdf    string
	write  bool
}

// thumbnailFlags holds flags for the thumbnail command.
type thumbnailFlags struct {
	common  commonFlags
	store   string
	output  string
	width   int
	timeout string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addStoreFlag adds the asset store directory flag to a FlagSet.
func addStoreFlag(fs *flag.FlagSet, dir *string) {
	fs.StringVarP(dir, "store", "s", "", "asset store directory")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseImportFlags parses import command flags and returns positional args.
func parseImportFlags(args []string, w io.Writer) (*importFlags, []string, error) {
	f := &importFlags{}
	fs := newFlagSet("import", w, printImportUsage)

	fs.StringVarP(&f.preset, "preset", "p", "", "import preset: background, smart, text, pro")
	fs.StringVar(&f.mode, "mode", "", "import mode recorded in the document")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "directory for the document JSON files")
	fs.BoolVar(&f.keepSource, "keep-source", false, "store the source PDF for later detection")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	addStoreFlag(fs, &f.store)
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseExportFlags parses export command flags and returns positional args.
func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newFlagSet("export", w, printExportUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default: input with .pdf)")
	fs.StringVar(&f.quality, "quality", "", "export quality: web, print")
	fs.StringVar(&f.logo, "logo", "", "asset id for locked logo stamps")
	fs.StringVar(&f.title, "title", "", "PDF title (default: meta.title)")
	fs.BoolVar(&f.watermark, "watermark", false, "draw the preview watermark")
	addStoreFlag(fs, &f.store)
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseDetectFlags parses detect command flags and returns positional args.
func parseDetectFlags(args []string, w io.Writer) (*detectFlags, []string, error) {
	f := &detectFlags{}
	fs := newFlagSet("detect", w, printDetectUsage)

	fs.StringVar(&f.pdf, "pdf", "", "source PDF (default: the stored source)")
	fs.BoolVar(&f.write, "write", false, "merge the result into the document file")
	addStoreFlag(fs, &f.store)
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}

// parseThumbnailFlags parses thumbnail command flags and returns positional args.
func parseThumbnailFlags(args []string, w io.Writer) (*thumbnailFlags, []string, error) {
	f := &thumbnailFlags{}
	fs := newFlagSet("thumbnail", w, printThumbnailUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output PNG path (default: input with .png)")
	fs.IntVar(&f.width, "width", 0, "thumbnail width in pixels (0 = config or 420)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout (e.g., 30s, 2m)")
	addStoreFlag(fs, &f.store)
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	return f, fs.Args(), nil
}
