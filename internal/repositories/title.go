package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// CachedTitle is a stored title with the time it was fetched.
type CachedTitle struct {
	models.Title
	FetchedAt time.Time
}

// TitleRepository caches title metadata. The full [models.Title] is kept as JSON; id, slug, name and status
// are also stored as columns for lookups and listing.
type TitleRepository struct {
	db *sql.DB
}

// NewTitleRepository creates a new TitleRepository with the given database connection
func NewTitleRepository(db *sql.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

// Upsert inserts or replaces a title. Another title holding the same slug is removed.
func (r *TitleRepository) Upsert(title models.Title, fetchedAt time.Time) error {
	if title.ID == "" {
		return fmt.Errorf("%w: title without id", shared.ErrInvalidCatalogData)
	}
	slug := title.Slug
	if slug == "" {
		slug = title.ID
	}

	payload, err := json.Marshal(title)
	if err != nil {
		return fmt.Errorf("failed to encode title: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM titles WHERE slug = ? AND id != ?", slug, title.ID); err != nil {
		return fmt.Errorf("failed to release slug: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO titles (id, slug, title, status, last_chapter, payload, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			status = excluded.status,
			last_chapter = excluded.last_chapter,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`, title.ID, slug, title.Name, title.Status, title.LastChapter, string(payload), fetchedAt.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert title: %w", err)
	}

	return tx.Commit()
}

// Get returns a cached title by id.
func (r *TitleRepository) Get(id string) (*CachedTitle, error) {
	return r.scanOne(r.db.QueryRow("SELECT payload, fetched_at FROM titles WHERE id = ?", id), id)
}

// GetBySlug returns a cached title by slug.
func (r *TitleRepository) GetBySlug(slug string) (*CachedTitle, error) {
	return r.scanOne(r.db.QueryRow("SELECT payload, fetched_at FROM titles WHERE slug = ?", slug), slug)
}

// Find looks a title up by id, then by slug.
func (r *TitleRepository) Find(slugOrID string) (*CachedTitle, error) {
	t, err := r.Get(slugOrID)
	if err == nil {
		return t, nil
	}
	return r.GetBySlug(slugOrID)
}

// List returns every cached title ordered by name.
func (r *TitleRepository) List() ([]CachedTitle, error) {
	rows, err := r.db.Query("SELECT payload, fetched_at FROM titles ORDER BY title COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	var titles []CachedTitle
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		titles = append(titles, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating titles: %w", err)
	}

	return titles, nil
}

// Delete removes a title by id.
func (r *TitleRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM titles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTitleNotFound, id)
	}
	return nil
}

// Clear removes every cached title and returns how many were deleted.
func (r *TitleRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM titles")
	if err != nil {
		return 0, fmt.Errorf("failed to clear titles: %w", err)
	}
	return result.RowsAffected()
}

func (r *TitleRepository) scanOne(row *sql.Row, key string) (*CachedTitle, error) {
	t, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: title %s", shared.ErrCacheMiss, key)
	}
	return t, err
}

func (r *TitleRepository) scan(row scanner) (*CachedTitle, error) {
	var (
		payload   string
		fetchedAt time.Time
	)

	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan title: %w", err)
	}

	var title models.Title
	if err := json.Unmarshal([]byte(payload), &title); err != nil {
		return nil, fmt.Errorf("%w: cached title payload: %v", shared.ErrInvalidCatalogData, err)
	}

	return &CachedTitle{Title: title, FetchedAt: fetchedAt}, nil
}
