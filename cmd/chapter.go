package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/server"
	"github.com/urfave/cli/v3"
)

// ChapterInfo shows a single chapter.
func (r *Runner) ChapterInfo(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	chapter, err := catalog.ChapterByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch chapter: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(chapter, true)
	}

	r.writePlainHeader(chapter.DisplayName())
	r.writePlain("ID:        %s\n", chapter.ID)
	r.writePlain("Title ID:  %s\n", chapter.TitleID)
	if chapter.Language != "" {
		r.writePlain("Language:  %s\n", chapter.Language)
	}
	if len(chapter.Groups) > 0 {
		r.writePlain("Groups:    %s\n", strings.Join(chapter.Groups, ", "))
	} else {
		r.writePlain("Groups:    none\n")
	}
	if !chapter.PublishedAt.IsZero() {
		r.writePlain("Published: %s\n", chapter.PublishedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// ChapterImages lists the page image URLs of a chapter in reading order.
func (r *Runner) ChapterImages(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.requireCatalog()
	if err != nil {
		return err
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	images, err := catalog.ChapterImages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch pages: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(images, true)
	}

	if len(images) == 0 {
		r.writePlain("No pages found\n")
		return nil
	}

	for i, img := range images {
		r.writePlain("%3d. %s (%dx%d)\n", i+1, models.ImageURL(r.config.Catalog.ImageURL, img.Key), img.Width, img.Height)
	}
	return nil
}

// ChapterNav resolves the previous and next chapter of id.
//
// A chapter missing from its title's list is reported but is not a failure.
func (r *Runner) ChapterNav(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireCatalog(); err != nil {
		return err
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	var opts []navigator.RequestOption
	switch {
	case cmd.Bool("any-group"):
		opts = append(opts, navigator.WithoutPreferredGroup())
	case cmd.IsSet("group"):
		opts = append(opts, navigator.WithPreferredGroup(cmd.String("group")))
	}

	controller := navigator.NewController(r.controllerOpts(r.logger))
	state := controller.RequestNavigation(ctx, cmd.String("title"), id, opts...)

	if state.Err != nil && !state.Unavailable() {
		return state.Err
	}

	if cmd.Bool("json") {
		return r.writeJSON(server.NewNavigationResponse(state), true)
	}

	if state.Unavailable() {
		r.logger.Warn("navigation unavailable", "chapter", id, "error", state.Err)
		r.writePlain("Navigation unavailable: chapter %s is not in the title's chapter list\n", id)
		return nil
	}

	if state.Current != nil {
		r.writePlain("Current:  %s\n", describeEntry(state.Current))
	}
	if state.PreferredGroup != "" {
		r.writePlain("Group:    %s\n", state.PreferredGroup)
	} else {
		r.writePlain("Group:    any\n")
	}
	r.writePlain("Previous: %s\n", describeEntry(state.Previous))
	r.writePlain("Next:     %s\n", describeEntry(state.Next))
	return nil
}

func describeEntry(e *navigator.SequenceEntry) string {
	if e == nil {
		return "none"
	}
	groups := "no group"
	if len(e.Record.Groups) > 0 {
		groups = strings.Join(e.Record.Groups, ", ")
	}
	return fmt.Sprintf("%s [%s] %s", e.Record.DisplayName(), groups, e.ID())
}
