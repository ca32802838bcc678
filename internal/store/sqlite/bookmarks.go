package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linkmarkhq/linkmark/internal/domain"
)

var (
	// ErrNotFound is returned when a bookmark ID does not exist.
	ErrNotFound = errors.New("bookmark not found")

	// ErrNotPending is returned when a metadata write-back targets a record
	// whose lifecycle already reached a terminal state. The pending ->
	// complete|failed transition happens at most once.
	ErrNotPending = errors.New("bookmark metadata is not pending")
)

const timeLayout = time.RFC3339Nano

// CreateBookmark inserts b along with its tags. Tag names are lower-cased
// and upserted per user. An empty MetadataStatus is stored as NULL, which is
// how import-created bookmarks stay outside the enrichment lifecycle.
func (s *Store) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var status sql.NullString
	if b.MetadataStatus != "" {
		status = sql.NullString{String: string(b.MetadataStatus), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookmarks
		   (id, user_id, url, title, description, favicon, preview_image, note, metadata_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.URL,
		nullStr(b.Title), nullStr(b.Description), nullStr(b.Favicon), nullStr(b.PreviewImage), nullStr(b.Note),
		status,
		b.CreatedAt.UTC().Format(timeLayout), b.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bookmark: %w", err)
	}

	for _, name := range b.Tags {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		tagID, err := upsertTag(ctx, tx, b.UserID, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id) VALUES (?, ?)`,
			b.ID, tagID,
		); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bookmark: %w", err)
	}
	return nil
}

func upsertTag(ctx context.Context, tx *sql.Tx, userID, name string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (id, user_id, name) VALUES (?, ?, ?)`, id, userID, name,
	); err != nil {
		return "", fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return id, nil
}

// GetBookmark returns a bookmark with its tags, or ErrNotFound.
func (s *Store) GetBookmark(ctx context.Context, id string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, url, title, description, favicon, preview_image, note, metadata_status, created_at, updated_at
		   FROM bookmarks WHERE id = ?`, id)

	b, err := scanBookmark(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	tags, err := s.bookmarkTags(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Tags = tags[b.ID]
	return b, nil
}

// ListBookmarks returns all of a user's bookmarks, newest first, with tags.
func (s *Store) ListBookmarks(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, url, title, description, favicon, preview_image, note, metadata_status, created_at, updated_at
		   FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var (
		bookmarks []*domain.Bookmark
		ids       []string
	)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	tags, err := s.bookmarkTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		b.Tags = tags[b.ID]
	}
	return bookmarks, nil
}

// ExistsURL reports whether the user already has a bookmark for url.
func (s *Store) ExistsURL(ctx context.Context, userID, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM bookmarks WHERE user_id = ? AND url = ? LIMIT 1`, userID, url,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check url: %w", err)
	}
	return true, nil
}

// CompleteMetadata writes an enrichment result back and moves the record to
// complete. A title the user supplied at creation time wins over the fetched
// one; the other fields are overwritten with whatever was recovered. Only a
// pending record can be completed; otherwise ErrNotPending.
func (s *Store) CompleteMetadata(ctx context.Context, id string, m domain.Metadata) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks
		    SET title = COALESCE(title, ?),
		        description = ?,
		        favicon = ?,
		        preview_image = ?,
		        metadata_status = ?,
		        updated_at = ?
		  WHERE id = ? AND metadata_status = ?`,
		nullStr(m.Title), nullStr(m.Description), nullStr(m.Favicon), nullStr(m.PreviewImage),
		string(domain.StatusComplete),
		time.Now().UTC().Format(timeLayout),
		id, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("failed to complete metadata: %w", err)
	}
	return requirePending(res)
}

// FailMetadata moves a pending record to failed. Only a pending record can
// fail; otherwise ErrNotPending.
func (s *Store) FailMetadata(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET metadata_status = ?, updated_at = ? WHERE id = ? AND metadata_status = ?`,
		string(domain.StatusFailed),
		time.Now().UTC().Format(timeLayout),
		id, string(domain.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("failed to mark metadata failed: %w", err)
	}
	return requirePending(res)
}

// ListURLs returns every stored bookmark URL across all users, newest first.
func (s *Store) ListURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url FROM bookmarks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate urls: %w", err)
	}
	return urls, nil
}

func requirePending(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) bookmarkTags(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bt.bookmark_id, t.name
		   FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
		  WHERE bt.bookmark_id IN (`+placeholders+`)
		  ORDER BY t.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookmarkID, name string
		if err := rows.Scan(&bookmarkID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out[bookmarkID] = append(out[bookmarkID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (*domain.Bookmark, error) {
	var (
		b          domain.Bookmark
		title      sql.NullString
		desc       sql.NullString
		favicon    sql.NullString
		preview    sql.NullString
		note       sql.NullString
		status     sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.URL, &title, &desc, &favicon, &preview, &note, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.Title = strPtr(title)
	b.Description = strPtr(desc)
	b.Favicon = strPtr(favicon)
	b.PreviewImage = strPtr(preview)
	b.Note = strPtr(note)
	if status.Valid {
		b.MetadataStatus = domain.MetadataStatus(status.String)
	}

	var err error
	if b.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if b.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &b, nil
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
