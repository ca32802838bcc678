package metadata

import (
	"net/url"
	"regexp"
	"strings"
)

// Extracted holds the raw facts pulled out of page markup. Text fields are
// undecoded; URL fields are resolved against the page origin.
type Extracted struct {
	Title        *string
	Description  *string
	FaviconURL   *string
	PreviewImage *string
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	hrefRe  = regexp.MustCompile(`(?i)(?:^|[\s"'])href=["']([^"']*)["']`)
)

// Extract pulls title, description, favicon reference and preview-image
// reference out of raw markup by targeted pattern search. No DOM is built:
// correctness is what a browser's <head> would report for well-formed pages,
// and malformed markup yields nil fields rather than errors.
func Extract(html, pageURL string) Extracted {
	var out Extracted

	if m := titleRe.FindStringSubmatch(html); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			out.Title = &t
		}
	}

	if d := extractMeta(html, "description"); d != nil {
		out.Description = d
	} else {
		out.Description = extractMeta(html, "og:description")
	}

	// References resolve against the site origin, not the page path: a
	// path-relative href like "fav.png" on /blog/post/ points at the root,
	// matching how the assets are served in practice.
	var origin *url.URL
	if base, err := url.Parse(pageURL); err == nil && base.Host != "" {
		origin = &url.URL{Scheme: base.Scheme, Host: base.Host}
	}

	faviconHref := firstLinkHref(html, "icon")
	if faviconHref == nil {
		faviconHref = firstLinkHref(html, "shortcut icon")
	}
	if faviconHref == nil {
		faviconHref = firstLinkHref(html, "alternate icon")
	}
	if faviconHref == nil {
		fallback := "/favicon.ico"
		faviconHref = &fallback
	}
	out.FaviconURL = resolveRef(origin, *faviconHref)

	if img := extractMeta(html, "og:image"); img != nil {
		out.PreviewImage = resolveRef(origin, *img)
	}

	return out
}

// extractMeta finds the content attribute of a meta element whose name or
// property attribute equals name, trying both attribute orders.
func extractMeta(html, name string) *string {
	q := regexp.QuoteMeta(name)

	re := regexp.MustCompile(`(?i)<meta[^>]*(?:name|property)=["']` + q + `["'][^>]*content=["']([^"']*)["']`)
	if m := re.FindStringSubmatch(html); m != nil {
		return &m[1]
	}

	// Reversed attribute order: content before name/property.
	re = regexp.MustCompile(`(?i)<meta[^>]*content=["']([^"']*)["'][^>]*(?:name|property)=["']` + q + `["']`)
	if m := re.FindStringSubmatch(html); m != nil {
		return &m[1]
	}
	return nil
}

// firstLinkHref scans link elements for an exact rel match and returns the
// first href found. The quoted-value pattern keeps matching exact: a tag with
// rel="alternate icon" never satisfies a search for "icon".
func firstLinkHref(html, rel string) *string {
	tagRe := regexp.MustCompile(`(?i)<link[^>]*rel=["']` + regexp.QuoteMeta(rel) + `["'][^>]*>`)
	for _, tag := range tagRe.FindAllString(html, -1) {
		if m := hrefRe.FindStringSubmatch(tag); m != nil && m[1] != "" {
			return &m[1]
		}
	}
	return nil
}

// resolveRef resolves ref against base into an absolute URL. With no usable
// base, ref survives only if already absolute.
func resolveRef(base *url.URL, ref string) *string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil
	}
	abs := u.String()
	return &abs
}
