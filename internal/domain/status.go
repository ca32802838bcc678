package domain

// MetadataStatus is the enrichment lifecycle of a bookmark.
//
// Bookmarks created through the synchronous path are never observed as
// pending: the record returned to the caller is already complete. Bookmarks
// created through the async path stay pending until the worker writes back
// exactly once. Import-created bookmarks carry no status at all.
type MetadataStatus string

const (
	StatusPending  MetadataStatus = "pending"
	StatusComplete MetadataStatus = "complete"
	StatusFailed   MetadataStatus = "failed"
)

// Valid reports whether s is a known lifecycle state.
func (s MetadataStatus) Valid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s can never change again.
func (s MetadataStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// move. The only legal moves are pending -> complete and pending -> failed.
func (s MetadataStatus) CanTransition(next MetadataStatus) bool {
	return s == StatusPending && next.Terminal()
}
