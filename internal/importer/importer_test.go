package importer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarkhq/linkmark/internal/logger"
	"github.com/linkmarkhq/linkmark/internal/metrics"
	"github.com/linkmarkhq/linkmark/internal/store/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "linkmark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseCSV(t *testing.T) {
	data := []byte("url,title,description,note,tags,createdAt\n" +
		`https://a.com,A Title,,,"tag1;tag2",` + "\n" +
		",No URL Row,,,,\n" +
		"https://b.com,B,desc,a note,,2024-05-01\n")

	records, format, err := Parse("export.csv", data)
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
	require.Len(t, records, 2)

	assert.Equal(t, "https://a.com", records[0].URL)
	require.NotNil(t, records[0].Title)
	assert.Equal(t, "A Title", *records[0].Title)
	assert.Nil(t, records[0].Description)
	assert.Equal(t, []string{"tag1", "tag2"}, records[0].Tags)
	assert.Nil(t, records[0].CreatedAt)

	assert.Equal(t, "https://b.com", records[1].URL)
	require.NotNil(t, records[1].Note)
	assert.Equal(t, "a note", *records[1].Note)
	require.NotNil(t, records[1].CreatedAt)
	assert.Equal(t, 2024, records[1].CreatedAt.Year())
}

func TestParseNetscapeFolderTags(t *testing.T) {
	data := []byte(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000">Work</H3>
    <DL><p>
        <DT><H3>Dev</H3>
        <DL><p>
            <DT><A HREF="https://go.dev" ADD_DATE="1700000000">The Go Programming Language</A>
            <DD>Official site
        </DL><p>
        <DT><A HREF="https://news.example.com">Work News</A>
    </DL><p>
    <DT><A HREF="https://top.example.com">Top Level</A>
</DL><p>
`)

	records, format, err := Parse("bookmarks.html", data)
	require.NoError(t, err)
	assert.Equal(t, "netscape", format)
	require.Len(t, records, 3)

	assert.Equal(t, "https://go.dev", records[0].URL)
	require.NotNil(t, records[0].Title)
	assert.Equal(t, "The Go Programming Language", *records[0].Title)
	assert.Equal(t, []string{"work", "dev"}, records[0].Tags)
	require.NotNil(t, records[0].Note)
	assert.Equal(t, "Official site", *records[0].Note)
	require.NotNil(t, records[0].CreatedAt)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), *records[0].CreatedAt)

	assert.Equal(t, []string{"work"}, records[1].Tags)
	assert.Nil(t, records[1].Note)

	assert.Empty(t, records[2].Tags)
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"url":"https://a.com","title":"A","tags":["one","two"],"createdAt":"2024-05-01T10:00:00Z"},
		{"url":"https://b.com"}
	]`)

	records, format, err := Parse("export.json", data)
	require.NoError(t, err)
	assert.Equal(t, "json", format)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].CreatedAt)
	assert.Equal(t, []string{"one", "two"}, records[0].Tags)
	assert.Nil(t, records[1].Title)
}

func TestParseJSONNotAnArray(t *testing.T) {
	_, _, err := Parse("export.json", []byte(`{"url":"https://a.com"}`))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, _, err := Parse("export.xml", []byte("<bookmarks/>"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportSkipsDuplicatesAndEmptyURLs(t *testing.T) {
	store := setupStore(t)
	imp := New(store, logger.Nop())
	ctx := context.Background()

	data := []byte(`[
		{"url":"https://a.com","title":"A"},
		{"url":"https://a.com","title":"A again"},
		{"url":""},
		{"url":"https://b.com"}
	]`)

	res, err := imp.Import(ctx, "user-1", "export.json", data)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)

	list, err := store.ListBookmarks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, b := range list {
		assert.Empty(t, b.MetadataStatus)
	}
}

func TestImportSkipCounterMatchesResponse(t *testing.T) {
	store := setupStore(t)
	imp := New(store, logger.Nop())
	skipped := metrics.ImportedBookmarksTotal.WithLabelValues("json", "skipped")
	before := testutil.ToFloat64(skipped)

	data := []byte(`[
		{"url":"https://a.com"},
		{"url":"https://a.com"},
		{"url":""}
	]`)

	res, err := imp.Import(context.Background(), "user-1", "export.json", data)
	require.NoError(t, err)
	require.Equal(t, 2, res.Skipped)

	// Empty-URL skips count the same as duplicate skips.
	assert.Equal(t, float64(res.Skipped), testutil.ToFloat64(skipped)-before)
}

func TestImportScopedToUser(t *testing.T) {
	store := setupStore(t)
	imp := New(store, logger.Nop())
	ctx := context.Background()

	data := []byte(`[{"url":"https://a.com"}]`)

	res, err := imp.Import(ctx, "user-1", "export.json", data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	// Same URL for another user is not a duplicate.
	res, err = imp.Import(ctx, "user-2", "export.json", data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}
