package metadata

import "strconv"

// URLKey derives the per-URL fragment used in storage keys
// (favicons/<key>.ico, previews/<key>.jpg). A 32-bit rolling hash rendered
// in base 36: deterministic and stable, deliberately not cryptographic.
func URLKey(u string) string {
	var h int32
	for _, c := range u {
		h = 31*h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// FaviconKey is the storage key for a page's re-hosted favicon.
func FaviconKey(pageURL string) string { return "favicons/" + URLKey(pageURL) + ".ico" }

// PreviewKey is the storage key for a page's re-hosted preview image.
func PreviewKey(pageURL string) string { return "previews/" + URLKey(pageURL) + ".jpg" }
