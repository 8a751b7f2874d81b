// Package extract reads structure out of existing PDF files: styled text
// blocks, image placements and embedded image objects.
//
// Text and placements come from interpreting page content streams with
// github.com/ledongthuc/pdf. Image payloads come from
// github.com/pdfcpu/pdfcpu, keyed by object number so repeated placements of
// one image share a single payload. The two are joined by XObject resource
// name.
//
// All rectangles use the page's own units with a top-left origin.
// Style flags follow the common extractor convention (italic 2, serif 4,
// monospace 8, bold 16); they are derived from font names and descriptor
// flags and depend on the producer.
package extract
