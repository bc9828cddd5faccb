// package tasks implements long-running catalog operations with progress reporting.
//
// The core abstraction is CatalogEngine, which warms the chapter cache for many titles at once.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// WarmSource is the catalog surface needed to warm the cache.
//
// repositories.CachedCatalog implements it; Refresh must fetch upstream and store the result.
type WarmSource interface {
	Title(ctx context.Context, slugOrID string) (*models.Title, error)
	Refresh(ctx context.Context, titleID string) ([]models.ChapterRecord, error)
}

// TitleWarmResult is the outcome of warming one title.
type TitleWarmResult struct {
	Input    string        // Slug or id as given
	Title    *models.Title // Resolved title (nil if lookup failed)
	Chapters int           // Number of cached chapters
	Groups   []string      // Translation groups of the title
	Latest   string        // Label of the highest numbered chapter
	Error    error         // Error if the title failed
}

// WarmResult summarizes a warm run.
type WarmResult struct {
	Total     int
	Succeeded int
	Failed    int
	Titles    []TitleWarmResult // In input order
}

// CatalogEngine runs catalog maintenance tasks.
type CatalogEngine struct {
	source WarmSource
	logger *log.Logger
}

// NewCatalogEngine creates a new CatalogEngine with the provided source.
func NewCatalogEngine(source WarmSource, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CatalogEngine{source: source, logger: shared.WithLogger(logger, "component", "tasks")}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
