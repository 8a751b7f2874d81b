// Package revista converts between the editable magazine document model and
// PDF, in both directions.
//
// # Quick Start
//
// Create a converter with an asset store, render a document, and close when
// done:
//
//	store, err := revista.NewFileAssetStore("assets")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conv, err := revista.NewConverter(revista.WithAssetStore(store))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	res, err := conv.Render(ctx, doc, revista.RenderOptions{Quality: revista.QualityPrint})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range res.Warnings {
//	    log.Printf("warning: %v", w)
//	}
//	os.WriteFile("magazine.pdf", res.PDF, 0o644)
//
// # Document Model
//
// A Document is an ordered list of A4 pages. Each page stacks layers bottom
// to top and each layer holds items: Shape, ImageFrame, TextFrame and
// LockedLogoStamp. Items of any other type decode to UnknownItem and are
// written back unchanged. Unknown members at every level survive a
// ParseDocument/Encode round trip.
//
// # Rendering
//
// Render paints every visible layer with the three standard PDF font
// families. Text frames use frame-level style only; per-run marks are kept
// in the model and honored by Thumbnail. Items that cannot be drawn are
// skipped and reported as Warning values rather than failing the document.
//
// # Importing
//
// Import rasterizes every page into a locked background layer. The smart,
// text and pro presets also extract text blocks (with style runs and a
// sampled background color) and embedded images into a hidden "Detectado"
// layer:
//
//	res, err := conv.Import(ctx, pdfBytes, revista.ImportOptions{
//	    Preset:      revista.PresetSmart,
//	    StoreSource: true,
//	})
//
// Detect repeats structure extraction for a single page later on, and
// MergeDetected stores its result in the page's "detected" bucket:
//
//	ov, err := conv.DetectFromStore(ctx, doc, 2)
//	if err == nil {
//	    err = revista.MergeDetected(doc, 2, ov)
//	}
//
// # Limits
//
// Raster scales, occurrence caps, size thresholds and the scanned-page
// heuristic are tunable through WithLimits. DefaultLimits documents the
// stock values.
//
// # Parallel Processing
//
// Render, Import and Detect are safe to call concurrently. For batch work,
// ConverterPool bounds the number of converters in use:
//
//	pool, err := revista.NewConverterPool(revista.ResolvePoolSize(0), revista.WithAssetStore(store))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
//
// # Errors
//
// Fatal input problems match ErrInvalidInput with errors.Is, with refinements
// such as ErrNotPDF, ErrParse and ErrPageIndex. Per-element problems never
// fail a call; they come back as Warning values wrapping ErrAssetUnresolved,
// ErrGeometryInvalid, ErrExtraction or ErrItemFailed.
package revista
