package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: revista <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  import     Import PDF files as editable magazine documents")
	fmt.Fprintln(w, "  export     Render a document JSON file to PDF")
	fmt.Fprintln(w, "  detect     Detect text and images on one page of the source PDF")
	fmt.Fprintln(w, "  thumbnail  Render a PNG preview of the first page")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'revista help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -s, --store <dir>         Asset store directory (default: ./assets)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  REVISTA_CONFIG, REVISTA_STORE_DIR, REVISTA_PRESET,")
	fmt.Fprintln(w, "  REVISTA_WATERMARK, REVISTA_WORKERS, ROD_BROWSER_BIN")
}

// printImportUsage prints usage for the import command.
func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: revista import <file.pdf>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Import PDF files. Each input gets a <name>.json document; page")
	fmt.Fprintln(w, "rasters and extracted images go to the asset store.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -p, --preset <s>          background (default), smart, text, pro")
	fmt.Fprintln(w, "      --mode <s>            Import mode recorded in meta (default: safe)")
	fmt.Fprintln(w, "  -o, --out-dir <dir>       Output directory (default: next to the input)")
	fmt.Fprintln(w, "      --keep-source         Store the source PDF for 'revista detect'")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: revista export <doc.json> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a document to an A4 PDF. Items that cannot be drawn are")
	fmt.Fprintln(w, "skipped and reported as warnings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF (default: input with .pdf)")
	fmt.Fprintln(w, "      --quality <s>         web (default) or print")
	fmt.Fprintln(w, "      --watermark           Draw the preview watermark on every page")
	fmt.Fprintln(w, "      --logo <id>           Asset id for locked logo stamps")
	fmt.Fprintln(w, "      --title <s>           PDF title (default: meta.title)")
	printCommonUsage(w)
}

// printDetectUsage prints usage for the detect command.
func printDetectUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: revista detect <doc.json> <page> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Detect text blocks and images on a page (1-based) and print the")
	fmt.Fprintln(w, "overlay as JSON, or merge it into the document with --write.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --pdf <path>          Source PDF (default: the stored source)")
	fmt.Fprintln(w, "      --write               Write pages[n].detected into <doc.json>")
	printCommonUsage(w)
}

// printThumbnailUsage prints usage for the thumbnail command.
func printThumbnailUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: revista thumbnail <doc.json> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a PNG preview of the first page with headless Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PNG (default: input with .png)")
	fmt.Fprintln(w, "      --width <px>          Width in pixels (default: 420)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Browser timeout (default: 30s)")
	printCommonUsage(w)
}

// commandUsage maps command names to their usage printers.
var commandUsage = map[string]func(io.Writer){
	"import":    printImportUsage,
	"export":    printExportUsage,
	"detect":    printDetectUsage,
	"thumbnail": printThumbnailUsage,
}

// runHelp prints general or per-command help.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	usage, ok := commandUsage[args[0]]
	if !ok {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	usage(env.Stdout)
	return ExitSuccess
}
