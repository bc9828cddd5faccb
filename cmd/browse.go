package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/urfave/cli/v3"
)

// filterFromFlags builds catalog filters from the browse flags.
func filterFromFlags(cmd *cli.Command) (models.FilterState, error) {
	filter := models.NewFilterState()
	filter.Query = cmd.StringArg("query")
	filter.Genres = cmd.StringSlice("genre")
	filter.Excludes = cmd.StringSlice("exclude")
	filter.Type = cmd.String("type")
	filter.Country = cmd.StringSlice("country")
	filter.Status = cmd.Int("status")
	filter.ContentRating = cmd.String("content-rating")
	filter.From = cmd.Int("from")
	filter.To = cmd.Int("to")
	filter.Minimum = cmd.Int("minimum")
	filter.Sort = cmd.String("sort")
	filter.Completed = cmd.Bool("completed")

	if page := cmd.Int("page"); page > 0 {
		filter.Page = page
	}
	if limit := cmd.Int("limit"); limit > 0 {
		filter.Limit = limit
	}

	for _, d := range cmd.StringSlice("demographic") {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			return filter, fmt.Errorf("%w: demographic %q", shared.ErrInvalidFlag, d)
		}
		filter.Demographic = append(filter.Demographic, n)
	}

	if filter.Status < 0 || filter.Status > 4 {
		return filter, fmt.Errorf("%w: status must be between 1 and 4", shared.ErrInvalidFlag)
	}
	if filter.From > 0 && filter.To > 0 && filter.From > filter.To {
		return filter, fmt.Errorf("%w: --from %d is after --to %d", shared.ErrInvalidFlag, filter.From, filter.To)
	}

	return filter, nil
}

// Browse searches the catalog with filters.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("searching catalog", "path", filter.SearchPath())

	titles, err := catalog.Search(ctx, filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(titles, true)
	}

	if len(titles) == 0 {
		r.writePlain("No titles found\n")
		return nil
	}

	header := fmt.Sprintf("Titles (page %d)", filter.Page)
	if filter.Query != "" {
		header = fmt.Sprintf("Results for %q (page %d)", filter.Query, filter.Page)
	}
	r.writePlainHeader(header)

	for i, t := range titles {
		r.writePlain("%d. %s\n", (filter.Page-1)*filter.Limit+i+1, t.Name)
		r.writePlain("   Slug: %s • %s", t.Slug, t.StatusText())
		if t.LastChapter > 0 {
			r.writePlain(" • Last chapter %s", strconv.FormatFloat(t.LastChapter, 'f', -1, 64))
		}
		r.writePlain("\n")
		if len(t.Genres) > 0 {
			r.writePlain("   Genres: %s\n", strings.Join(t.Genres, ", "))
		}
	}

	return nil
}

// Latest lists recently updated chapters.
func (r *Runner) Latest(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	page, limit := cmd.Int("page"), cmd.Int("limit")
	latest, err := catalog.Latest(ctx, page, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch latest chapters: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(latest, true)
	}

	if len(latest) == 0 {
		r.writePlain("No recent chapters\n")
		return nil
	}

	r.writePlainHeader("Latest Chapters")
	for i, l := range latest {
		name := l.Title.Name
		if name == "" {
			name = l.Title.Slug
		}
		r.writePlain("%d. %s • %s", i+1, name, l.Chapter.DisplayName())
		if g := l.Chapter.FirstGroup(); g != "" {
			r.writePlain(" [%s]", g)
		}
		r.writePlain("\n   Chapter ID: %s\n", l.Chapter.ID)
	}

	return nil
}
