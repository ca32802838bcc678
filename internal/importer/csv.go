package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/linkmarkhq/linkmark/internal/domain"
)

// CSV column order. The header row is always skipped. Tags use a secondary
// delimiter so they never collide with the field separator.
const (
	csvFieldURL = iota
	csvFieldTitle
	csvFieldDescription
	csvFieldNote
	csvFieldTags
	csvFieldCreatedAt
)

const csvTagSeparator = ";"

func parseCSV(data []byte) ([]domain.ImportRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []domain.ImportRecord
	for _, row := range rows[1:] { // skip header
		field := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		url := field(csvFieldURL)
		if url == "" {
			// A record with no URL is dropped, not an error.
			continue
		}

		rec := domain.ImportRecord{
			URL:         url,
			Title:       optStr(field(csvFieldTitle)),
			Description: optStr(field(csvFieldDescription)),
			Note:        optStr(field(csvFieldNote)),
			Tags:        splitTags(field(csvFieldTags)),
			CreatedAt:   parseCSVTime(field(csvFieldCreatedAt)),
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, csvTagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseCSVTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	return nil
}
