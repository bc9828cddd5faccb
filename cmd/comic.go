package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mangax/internal/formatter"
	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// ComicInfo shows title metadata.
func (r *Runner) ComicInfo(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}

	title, err := catalog.Title(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to fetch title: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(title, true)
	}

	r.writePlainHeader(title.Name)
	r.writePlain("ID:       %s\n", title.ID)
	r.writePlain("Slug:     %s\n", title.Slug)
	r.writePlain("Status:   %s\n", title.StatusText())
	if title.LastChapter > 0 {
		r.writePlain("Latest:   Ch. %s\n", strconv.FormatFloat(title.LastChapter, 'f', -1, 64))
	}
	if title.ChapterCount > 0 {
		r.writePlain("Chapters: %d\n", title.ChapterCount)
	}
	if title.Follows > 0 {
		r.writePlain("Follows:  %d\n", title.Follows)
	}
	if len(title.Genres) > 0 {
		r.writePlain("Genres:   %s\n", strings.Join(title.Genres, ", "))
	}
	if key := title.CoverKey(); key != "" && r.config.Catalog.ImageURL != "" {
		r.writePlain("Cover:    %s\n", models.ImageURL(r.config.Catalog.ImageURL, key))
	}
	if r.config.Catalog.SiteURL != "" {
		r.writePlain("URL:      %s\n", models.SiteURL(r.config.Catalog.SiteURL, title.Slug, ""))
	}
	if title.Description != "" {
		r.writePlainln("%s", shared.Truncate(title.Description, 400))
	}

	return nil
}

// ComicChapters lists a title's chapters newest first, optionally filtered to one group and exported to a file.
func (r *Runner) ComicChapters(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}

	title, err := catalog.Title(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to fetch title: %w", err)
	}

	var records []models.ChapterRecord
	if cmd.Bool("refresh") && r.cache != nil {
		records, err = r.cache.Refresh(ctx, title.ID)
	} else {
		records, err = catalog.ChapterRecords(ctx, title.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch chapters: %w", err)
	}

	seq, err := navigator.Build(records)
	if err != nil {
		return err
	}

	group := cmd.String("group")
	if group != "" {
		idx := navigator.NewGroupIndex(seq)
		if idx.Count(group) == 0 {
			r.logger.Warn("no chapters by group", "group", group, "groups", idx.Groups())
		}
	}

	listing := formatter.NewChapterListing(*title, navigator.Listing(seq, group), group)
	format := cmd.String("format")
	output := cmd.String("output")

	if output == "" {
		data, err := formatter.Render(listing, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	switch strings.ToLower(format) {
	case formatter.FormatMarkdown, "md":
		var coverURL string
		if key := title.CoverKey(); cmd.Bool("cover") && key != "" {
			coverURL = models.ImageURL(r.config.Catalog.ImageURL, key)
		}
		result, err := formatter.WriteMarkdownExport(listing, output, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d chapters to %s\n", len(listing.Chapters), result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
	default:
		path, err := formatter.WriteFileExport(listing, format, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d chapters to %s\n", len(listing.Chapters), path)
	}

	return nil
}

// ComicOpen opens the title page in the default browser.
func (r *Runner) ComicOpen(ctx context.Context, cmd *cli.Command) error {
	slug, err := requireArg(cmd, "slug")
	if err != nil {
		return err
	}

	url := models.SiteURL(r.config.Catalog.SiteURL, slug, "")
	if err := shared.OpenBrowser(url); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlain("Please open this URL in your browser:\n%s\n", url)
		return nil
	}

	r.writePlain("→ Opened %s\n", url)
	return nil
}
