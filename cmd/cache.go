package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mangax/internal/repositories"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/desertthunder/mangax/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireCache() (*repositories.CachedCatalog, error) {
	if r.cache == nil {
		return nil, fmt.Errorf("%w: chapter cache not initialized (run setup database)", shared.ErrServiceUnavailable)
	}
	return r.cache, nil
}

// CacheWarm fetches and stores chapter lists for the given titles.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireCache(); err != nil {
		return err
	}

	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		return fmt.Errorf("%w: at least one title slug", shared.ErrMissingArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Warm(ctx, progress, inputs, tasks.WarmOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainHeader("Cache Warm Summary")
		r.writePlain("Titles:    %d\n", result.Total)
		r.writePlain("Succeeded: %d\n", result.Succeeded)
		r.writePlain("Failed:    %d\n", result.Failed)
		for _, t := range result.Titles {
			if t.Error != nil || t.Title == nil {
				continue
			}
			r.writePlain("  %s: %d chapters, latest %s, groups: %s\n",
				t.Title.Name, t.Chapters, t.Latest, strings.Join(t.Groups, ", "))
		}
	}

	if err != nil {
		return err
	}
	if result.Failed > 0 {
		r.logger.Warnf("%d of %d titles failed", result.Failed, result.Total)
	}
	return nil
}

type cachedTitleJSON struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Chapters  int       `json:"chapters"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheList shows the cached titles and how many chapters each has.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	cache, err := r.requireCache()
	if err != nil {
		return err
	}

	titles, err := cache.Titles().List()
	if err != nil {
		return err
	}

	entries := make([]cachedTitleJSON, 0, len(titles))
	for _, t := range titles {
		records, err := cache.Chapters().ListByTitle(t.ID)
		if err != nil {
			return err
		}
		fetchedAt := t.FetchedAt
		if at, ok, err := cache.Chapters().LastFetched(t.ID); err == nil && ok {
			fetchedAt = at
		}
		entries = append(entries, cachedTitleJSON{
			ID:        t.ID,
			Slug:      t.Slug,
			Name:      t.Name,
			Chapters:  len(records),
			FetchedAt: fetchedAt,
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		r.writePlain("Cache is empty\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Cached titles (%d)", len(entries)))
	for i, e := range entries {
		r.writePlain("%3d. %s (%s)\n", i+1, e.Name, e.Slug)
		r.writePlain("     %d chapters, fetched %s\n", e.Chapters, e.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// CacheClear removes one title, or everything when no id is given.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, err := r.requireCache()
	if err != nil {
		return err
	}

	if id := strings.TrimSpace(cmd.Args().First()); id != "" {
		if err := cache.Invalidate(id); err != nil {
			return err
		}
		r.writePlain("✓ Cleared %s\n", id)
		return nil
	}

	chapters, titles, err := cache.Clear()
	if err != nil {
		return err
	}
	r.writePlain("✓ Cleared %d chapters and %d titles\n", chapters, titles)
	return nil
}
