package revista_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	revista "github.com/larabashadi/Revista-2"
)

// Example renders a two-page document to PDF.
func Example() {
	conv, err := revista.NewConverter(revista.WithAssetStore(revista.NewMemoryAssetStore()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer conv.Close()

	doc, err := revista.ParseDocument([]byte(`{
		"pages": [
			{"layers": [{"items": [
				{"id": "band", "type": "Shape", "rect": {"x": 0, "y": 0, "w": 595, "h": 120}, "fill": "#0f172a"},
				{"id": "title", "type": "TextFrame", "rect": {"x": 40, "y": 30, "w": 500, "h": 60}, "text": "Temporada 2024"}
			]}]},
			{"layers": [{"items": []}]}
		]
	}`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	res, err := conv.Render(context.Background(), doc, revista.RenderOptions{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(res.Pages, bytes.HasPrefix(res.PDF, []byte("%PDF-")), len(res.Warnings))
	// Output: 2 true 0
}

// ExampleParseColor shows that color parsing never fails.
func ExampleParseColor() {
	fmt.Println(revista.ParseColor("#F80").Hex())
	fmt.Println(revista.ParseColor("rgba(0, 128, 255, 0.5)").Hex())
	fmt.Println(revista.ParseColor("not a color").Hex())
	// Output:
	// #ff8800
	// #0080ff
	// #000000
}

// ExampleResolveFontFamily shows the lossy mapping onto the base fonts.
func ExampleResolveFontFamily() {
	for _, name := range []string{"Courier New", "Playfair Display", "Inter"} {
		fmt.Println(name, "->", revista.ResolveFontFamily(name))
	}
	// Output:
	// Courier New -> Courier
	// Playfair Display -> Times
	// Inter -> Helvetica
}

// ExampleResolveLockedLogos injects a club logo before export.
func ExampleResolveLockedLogos() {
	doc, err := revista.ParseDocument([]byte(`{"pages": [{"layers": [{"items": [
		{"id": "logo", "type": "LockedLogoStamp", "rect": {"x": 20, "y": 20, "w": 60, "h": 60}, "assetRef": "{{club.logo}}"}
	]}]}]}`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	n := revista.ResolveLockedLogos(doc, "3f2a9c")
	stamp := doc.Pages[0].Layers[0].Items[0].(*revista.LockedLogoStamp)
	fmt.Println(n, stamp.AssetRef)
	// Output: 1 3f2a9c
}

// ExampleMergeDetectedJSON patches one page of stored document JSON.
func ExampleMergeDetectedJSON() {
	raw := []byte(`{"pages": [{"layers": []}], "meta": {"club": "CD Revista"}}`)
	ov := &revista.Overlay{
		Text: []revista.DetectedText{{ID: "d-0-0", W: 100, H: 20, Text: "Hola", Confidence: 1}},
	}

	out, err := revista.MergeDetectedJSON(raw, 0, ov)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(gjson.GetBytes(out, "pages.0.detected.text.0.text"))
	fmt.Println(gjson.GetBytes(out, "pages.0.detected.images.#"))
	fmt.Println(gjson.GetBytes(out, "meta.club"))
	// Output:
	// Hola
	// 0
	// CD Revista
}
