package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/linkmarkhq/linkmark/internal/domain"
)

// The Netscape bookmark-file grammar every browser exports: <H3> headers
// open a folder scope, </DL> closes it, and each <A> inside inherits every
// enclosing folder name (lower-cased) as a tag. Line-oriented pattern
// matching, deliberately tolerant of the broken markup browsers emit.
var (
	folderRe  = regexp.MustCompile(`(?i)<H3[^>]*>(.*?)</H3>`)
	anchorRe  = regexp.MustCompile(`(?is)<A[^>]*HREF="([^"]*)"[^>]*>(.*?)</A>`)
	addDateRe = regexp.MustCompile(`(?i)ADD_DATE="(\d+)"`)
	ddRe      = regexp.MustCompile(`(?i)^<DD>(.*)`)
)

func parseNetscape(data []byte) ([]domain.ImportRecord, error) {
	lines := strings.Split(string(data), "\n")

	var (
		records     []domain.ImportRecord
		folderStack []string
	)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := folderRe.FindStringSubmatch(line); m != nil {
			folderStack = append(folderStack, strings.ToLower(strings.TrimSpace(m[1])))
			continue
		}

		if line == "</DL><p>" || line == "</DL>" {
			if n := len(folderStack); n > 0 {
				folderStack = folderStack[:n-1]
			}
			continue
		}

		m := anchorRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := domain.ImportRecord{
			URL:   m[1],
			Title: optStr(m[2]),
			Tags:  append([]string(nil), folderStack...),
		}

		if dm := addDateRe.FindStringSubmatch(line); dm != nil {
			if secs, err := strconv.ParseInt(dm[1], 10, 64); err == nil {
				ts := time.Unix(secs, 0).UTC()
				rec.CreatedAt = &ts
			}
		}

		// The line after a link may carry a <DD> description; it becomes
		// the note.
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if dd := ddRe.FindStringSubmatch(next); dd != nil {
				rec.Note = optStr(dd[1])
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
