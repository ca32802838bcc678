package domain

import "time"

// Bookmark is the persisted record. Enrichment only ever writes Title,
// Description, Favicon, PreviewImage and MetadataStatus; Note is
// user-authored and never touched by the pipeline.
type Bookmark struct {
	ID             string         `json:"id"`
	UserID         string         `json:"-"`
	URL            string         `json:"url"`
	Title          *string        `json:"title"`
	Description    *string        `json:"description"`
	Favicon        *string        `json:"favicon"`
	PreviewImage   *string        `json:"previewImage"`
	Note           *string        `json:"note"`
	Tags           []string       `json:"tags"`
	MetadataStatus MetadataStatus `json:"metadataStatus,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Metadata is the ephemeral enrichment result. Each field is independently
// nullable; all-nil is the degraded outcome of an unreachable page and is a
// valid result, not an error.
type Metadata struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Favicon      *string `json:"favicon"`
	PreviewImage *string `json:"previewImage"`
}

// Empty reports whether no field was recovered.
func (m Metadata) Empty() bool {
	return m.Title == nil && m.Description == nil && m.Favicon == nil && m.PreviewImage == nil
}

// ImportRecord is the normalized output shared by all import parsers, so the
// persistence code downstream is format-agnostic.
type ImportRecord struct {
	URL         string
	Title       *string
	Description *string
	Note        *string
	Tags        []string
	CreatedAt   *time.Time
}
