package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://example.com/blog/post/"

func strval(t *testing.T, s *string) string {
	t.Helper()
	require.NotNil(t, s)
	return *s
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{name: "simple", html: `<html><head><title>Hello</title></head></html>`, want: ptr("Hello")},
		{name: "attributes on tag", html: `<title data-x="1">Spaced </title>`, want: ptr("Spaced")},
		{name: "multiline content", html: "<title>\n  Two\nLines\n</title>", want: ptr("Two\nLines")},
		{name: "first title wins", html: `<title>First</title><title>Second</title>`, want: ptr("First")},
		{name: "empty after trim", html: `<title>   </title>`, want: nil},
		{name: "missing", html: `<body>no head</body>`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.html, baseURL)
			if tt.want == nil {
				assert.Nil(t, got.Title)
				return
			}
			assert.Equal(t, *tt.want, strval(t, got.Title))
		})
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name string
		html string
		want *string
	}{
		{
			name: "name then content",
			html: `<meta name="description" content="A page">`,
			want: ptr("A page"),
		},
		{
			name: "content then name",
			html: `<meta content="Reversed" name="description">`,
			want: ptr("Reversed"),
		},
		{
			name: "property og:description fallback",
			html: `<meta property="og:description" content="OG text">`,
			want: ptr("OG text"),
		},
		{
			name: "description preferred over og",
			html: `<meta property="og:description" content="og"><meta name="description" content="plain">`,
			want: ptr("plain"),
		},
		{name: "absent", html: `<meta name="keywords" content="x">`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.html, baseURL)
			if tt.want == nil {
				assert.Nil(t, got.Description)
				return
			}
			assert.Equal(t, *tt.want, strval(t, got.Description))
		})
	}
}

func TestExtractFavicon(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "rel icon",
			html: `<link rel="icon" href="/fav.png">`,
			want: "https://example.com/fav.png",
		},
		{
			name: "shortcut icon fallback",
			html: `<link rel="shortcut icon" href="/sc.ico">`,
			want: "https://example.com/sc.ico",
		},
		{
			name: "alternate icon only",
			html: `<link rel="alternate icon" href="/a.png">`,
			want: "https://example.com/a.png",
		},
		{
			name: "exact icon preferred over alternate icon",
			html: `<link rel="alternate icon" href="/a.png"><link rel="icon" href="/i.png">`,
			want: "https://example.com/i.png",
		},
		{
			name: "default fallback path",
			html: `<p>no links at all</p>`,
			want: "https://example.com/favicon.ico",
		},
		{
			name: "absolute href kept",
			html: `<link rel="icon" href="https://cdn.example.net/fav.ico">`,
			want: "https://cdn.example.net/fav.ico",
		},
		{
			name: "path-relative href resolves to origin root",
			html: `<link rel="icon" href="fav.png">`,
			want: "https://example.com/fav.png",
		},
		{
			name: "href before rel",
			html: `<link href="/first.ico" rel="icon">`,
			want: "https://example.com/first.ico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.html, baseURL)
			assert.Equal(t, tt.want, strval(t, got.FaviconURL))
		})
	}
}

func TestExtractPreviewImage(t *testing.T) {
	got := Extract(`<meta property="og:image" content="/og.jpg">`, baseURL)
	assert.Equal(t, "https://example.com/og.jpg", strval(t, got.PreviewImage))

	got = Extract(`<meta property="og:image" content="https://img.example.net/x.jpg">`, baseURL)
	assert.Equal(t, "https://img.example.net/x.jpg", strval(t, got.PreviewImage))

	got = Extract(`<p>nothing</p>`, baseURL)
	assert.Nil(t, got.PreviewImage)
}

func TestExtractGarbageInput(t *testing.T) {
	tests := []string{
		"",
		"<<<<>>>> not html at all",
		`<title>unclosed`,
		`<meta name="description" content=`,
		"\x00\x01\x02 binary junk",
	}

	for _, html := range tests {
		got := Extract(html, baseURL)
		assert.Nil(t, got.Title)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.PreviewImage)
		// Favicon falls back to /favicon.ico resolved against the origin.
		assert.Equal(t, "https://example.com/favicon.ico", strval(t, got.FaviconURL))
	}
}

func TestURLKeyDeterministic(t *testing.T) {
	k1 := URLKey("https://example.com/a")
	k2 := URLKey("https://example.com/a")
	k3 := URLKey("https://example.com/b")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEmpty(t, k1)

	assert.Equal(t, "favicons/"+k1+".ico", FaviconKey("https://example.com/a"))
	assert.Equal(t, "previews/"+k1+".jpg", PreviewKey("https://example.com/a"))
}

func ptr(s string) *string { return &s }
