package importer

import (
	"encoding/json"
	"time"

	"github.com/linkmarkhq/linkmark/internal/domain"
)

type jsonRecord struct {
	URL         string   `json:"url"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Note        *string  `json:"note"`
	Tags        []string `json:"tags"`
	CreatedAt   *string  `json:"createdAt"`
}

func parseJSON(data []byte) ([]domain.ImportRecord, error) {
	var rows []jsonRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, ErrInvalidFile
	}

	records := make([]domain.ImportRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.ImportRecord{
			URL:         row.URL,
			Title:       row.Title,
			Description: row.Description,
			Note:        row.Note,
			Tags:        row.Tags,
		}
		if row.CreatedAt != nil {
			if ts, err := time.Parse(time.RFC3339, *row.CreatedAt); err == nil {
				rec.CreatedAt = &ts
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
