package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// ChapterRepository caches the chapter lists of titles.
//
// A title's list is always replaced as a whole so the stored fetch order (position) matches a single upstream fetch.
type ChapterRepository struct {
	db *sql.DB
}

// NewChapterRepository creates a new ChapterRepository with the given database connection
func NewChapterRepository(db *sql.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// ReplaceForTitle stores records as the chapter list of titleID and logs the fetch.
//
// Every record is kept at its fetch position, including repeated chapter ids.
func (r *ChapterRepository) ReplaceForTitle(titleID string, records []models.ChapterRecord, fetchedAt time.Time) error {
	if titleID == "" {
		return fmt.Errorf("%w: title id is required", shared.ErrMissingArgument)
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("validation failed for record %d: %w", i, err)
		}
	}

	fetchedAt = fetchedAt.UTC()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chapters WHERE title_id = ?", titleID); err != nil {
		return fmt.Errorf("failed to clear chapters: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chapters (id, title_id, position, label, volume, language, groups, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		groups, err := json.Marshal(nonNil(rec.Groups))
		if err != nil {
			return fmt.Errorf("failed to encode groups: %w", err)
		}

		var published sql.NullTime
		if !rec.PublishedAt.IsZero() {
			published = sql.NullTime{Time: rec.PublishedAt.UTC(), Valid: true}
		}

		if _, err := stmt.Exec(rec.ID, titleID, i, rec.Label, rec.Volume, rec.Language, string(groups), published, fetchedAt); err != nil {
			return fmt.Errorf("failed to insert chapter %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO chapter_fetches (id, title_id, chapter_count, fetched_at) VALUES (?, ?, ?, ?)",
		shared.GenerateID(), titleID, len(records), fetchedAt,
	); err != nil {
		return fmt.Errorf("failed to log fetch: %w", err)
	}

	return tx.Commit()
}

// ListByTitle returns the cached chapters of a title in fetch order.
func (r *ChapterRepository) ListByTitle(titleID string) ([]models.ChapterRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, title_id, label, volume, language, groups, published_at
		FROM chapters
		WHERE title_id = ?
		ORDER BY position
	`, titleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	var records []models.ChapterRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chapters: %w", err)
	}

	return records, nil
}

// Get returns a cached chapter by id.
//
// A repeated id resolves to its first entry in the most recently fetched list.
func (r *ChapterRepository) Get(id string) (*models.ChapterRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, title_id, label, volume, language, groups, published_at
		FROM chapters
		WHERE id = ?
		ORDER BY fetched_at DESC, position
		LIMIT 1
	`, id)

	rec, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: chapter %s", shared.ErrCacheMiss, id)
	}
	return rec, err
}

// LastFetched returns when the chapter list of titleID was last stored. ok is false when it never was.
func (r *ChapterRepository) LastFetched(titleID string) (fetchedAt time.Time, ok bool, err error) {
	err = r.db.QueryRow(`
		SELECT fetched_at FROM chapter_fetches
		WHERE title_id = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`, titleID).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query fetch log: %w", err)
	}
	return fetchedAt, true, nil
}

// DeleteByTitle removes the cached chapters and fetch log of a title.
func (r *ChapterRepository) DeleteByTitle(titleID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chapters WHERE title_id = ?", titleID); err != nil {
		return fmt.Errorf("failed to delete chapters: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM chapter_fetches WHERE title_id = ?", titleID); err != nil {
		return fmt.Errorf("failed to delete fetch log: %w", err)
	}
	return tx.Commit()
}

// Clear removes every cached chapter and returns how many were deleted.
func (r *ChapterRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM chapters")
	if err != nil {
		return 0, fmt.Errorf("failed to clear chapters: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM chapter_fetches"); err != nil {
		return 0, fmt.Errorf("failed to clear fetch log: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of cached chapters.
func (r *ChapterRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM chapters").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ChapterRepository) scan(row scanner) (*models.ChapterRecord, error) {
	var (
		id, titleID, label, volume, language, groups string
		published                                    sql.NullTime
	)

	if err := row.Scan(&id, &titleID, &label, &volume, &language, &groups, &published); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan chapter: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(groups), &names); err != nil {
		return nil, fmt.Errorf("%w: groups of chapter %s: %v", shared.ErrInvalidCatalogData, id, err)
	}

	var publishedAt time.Time
	if published.Valid {
		publishedAt = published.Time
	}

	rec := models.NewChapterRecord(id, label, names, publishedAt)
	rec.TitleID = titleID
	rec.Volume = volume
	rec.Language = language
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
