package revista

// ResolveLockedLogos points every placeholder LockedLogoStamp on the first
// page at logoID and returns how many stamps changed. Stamps that already
// carry a concrete asset id are left alone, as is everything when logoID is
// empty.
func ResolveLockedLogos(doc *Document, logoID AssetID) int {
	if doc == nil || logoID == "" || len(doc.Pages) == 0 {
		return 0
	}
	n := 0
	page := &doc.Pages[0]
	for li := range page.Layers {
		for _, item := range page.Layers[li].Items {
			stamp, ok := item.(*LockedLogoStamp)
			if !ok {
				continue
			}
			if stamp.AssetRef == "" || isTemplateToken(stamp.AssetRef) {
				stamp.AssetRef = string(logoID)
				n++
			}
		}
	}
	return n
}
