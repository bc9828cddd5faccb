package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/services"
	"github.com/desertthunder/mangax/internal/shared"
)

// CachedCatalog implements [services.Catalog] in front of an upstream catalog.
//
// Chapter lists and titles are served from SQLite while younger than the TTL and refetched otherwise.
// With a TTL of zero every read goes upstream but results are still stored, so the cache keeps working
// as an offline record of what was fetched. Images, search and the hot feed are never cached.
//
// A cache write failure is logged and does not fail the read.
type CachedCatalog struct {
	upstream services.Catalog
	chapters *ChapterRepository
	titles   *TitleRepository
	ttl      time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewCachedCatalog wraps upstream with the cache stored in db.
func NewCachedCatalog(upstream services.Catalog, db *sql.DB, ttl time.Duration, logger *log.Logger) *CachedCatalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CachedCatalog{
		upstream: upstream,
		chapters: NewChapterRepository(db),
		titles:   NewTitleRepository(db),
		ttl:      ttl,
		logger:   shared.WithLogger(logger, "component", "cache"),
		now:      time.Now,
	}
}

// Chapters returns the chapter repository backing the cache.
func (c *CachedCatalog) Chapters() *ChapterRepository { return c.chapters }

// Titles returns the title repository backing the cache.
func (c *CachedCatalog) Titles() *TitleRepository { return c.titles }

func (c *CachedCatalog) fresh(fetchedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(fetchedAt) < c.ttl
}

// ChapterRecords serves a fresh cached list or refreshes it from upstream.
func (c *CachedCatalog) ChapterRecords(ctx context.Context, titleID string) ([]models.ChapterRecord, error) {
	fetchedAt, ok, err := c.chapters.LastFetched(titleID)
	if err != nil {
		c.logger.Warn("cache lookup failed", "title", titleID, "err", err)
	} else if ok && c.fresh(fetchedAt) {
		records, err := c.chapters.ListByTitle(titleID)
		if err == nil {
			c.logger.Debug("chapter list cache hit", "title", titleID, "count", len(records))
			return records, nil
		}
		c.logger.Warn("cache read failed", "title", titleID, "err", err)
	}

	return c.Refresh(ctx, titleID)
}

// Refresh fetches the chapter list from upstream and stores it regardless of age.
func (c *CachedCatalog) Refresh(ctx context.Context, titleID string) ([]models.ChapterRecord, error) {
	records, err := c.upstream.ChapterRecords(ctx, titleID)
	if err != nil {
		return nil, err
	}

	if err := c.chapters.ReplaceForTitle(titleID, records, c.now()); err != nil {
		c.logger.Warn("failed to cache chapter list", "title", titleID, "err", err)
	}
	return records, nil
}

// ChapterByID serves a cached chapter or asks upstream.
func (c *CachedCatalog) ChapterByID(ctx context.Context, chapterID string) (*models.ChapterRecord, error) {
	if rec, err := c.chapters.Get(chapterID); err == nil && rec.TitleID != "" {
		return rec, nil
	} else if err != nil && !errors.Is(err, shared.ErrCacheMiss) {
		c.logger.Warn("cache read failed", "chapter", chapterID, "err", err)
	}
	return c.upstream.ChapterByID(ctx, chapterID)
}

// TitleByChapterID answers from the cached chapter when present.
func (c *CachedCatalog) TitleByChapterID(ctx context.Context, chapterID string) (string, error) {
	if rec, err := c.chapters.Get(chapterID); err == nil && rec.TitleID != "" {
		return rec.TitleID, nil
	}
	return c.upstream.TitleByChapterID(ctx, chapterID)
}

// Title serves fresh cached metadata by id or slug, or refreshes it.
func (c *CachedCatalog) Title(ctx context.Context, slugOrID string) (*models.Title, error) {
	if cached, err := c.titles.Find(slugOrID); err == nil && c.fresh(cached.FetchedAt) {
		t := cached.Title
		return &t, nil
	}

	title, err := c.upstream.Title(ctx, slugOrID)
	if err != nil {
		return nil, err
	}

	if err := c.titles.Upsert(*title, c.now()); err != nil {
		c.logger.Warn("failed to cache title", "title", title.ID, "err", err)
	}
	return title, nil
}

func (c *CachedCatalog) ChapterImages(ctx context.Context, chapterID string) ([]models.ChapterImage, error) {
	return c.upstream.ChapterImages(ctx, chapterID)
}

func (c *CachedCatalog) Search(ctx context.Context, filter models.FilterState) ([]models.Title, error) {
	return c.upstream.Search(ctx, filter)
}

func (c *CachedCatalog) Latest(ctx context.Context, page, limit int) ([]models.LatestChapter, error) {
	return c.upstream.Latest(ctx, page, limit)
}

// Invalidate drops everything cached for a title.
func (c *CachedCatalog) Invalidate(titleID string) error {
	if err := c.chapters.DeleteByTitle(titleID); err != nil {
		return err
	}
	if err := c.titles.Delete(titleID); err != nil && !errors.Is(err, shared.ErrTitleNotFound) {
		return err
	}
	return nil
}

// Clear drops the whole cache and returns the number of chapters and titles removed.
func (c *CachedCatalog) Clear() (chapters, titles int64, err error) {
	if chapters, err = c.chapters.Clear(); err != nil {
		return 0, 0, err
	}
	if titles, err = c.titles.Clear(); err != nil {
		return chapters, 0, err
	}
	return chapters, titles, nil
}
