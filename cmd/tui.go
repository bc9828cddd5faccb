package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
	"github.com/desertthunder/mangax/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/mangax-tui.log"

// Read launches the interactive reader for a title.
//
// Without --chapter the reader opens the lowest numbered chapter.
func (r *Runner) Read(ctx context.Context, cmd *cli.Command) error {
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

	chapterID := cmd.String("chapter")
	if chapterID == "" {
		records, err := catalog.ChapterRecords(ctx, title.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch chapters: %w", err)
		}
		seq, err := navigator.Build(records)
		if err != nil {
			return err
		}
		first := seq.At(0)
		if first == nil {
			return fmt.Errorf("%w: %s has no chapters", shared.ErrChapterNotFound, title.Name)
		}
		chapterID = first.ID()
	}

	// Logs go to a file while the reader owns the terminal.
	logPath := r.config.Log.File
	if logPath == "" {
		logPath = defaultTUILog
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Controller: navigator.NewController(r.controllerOpts(fileLogger)),
		Catalog:    catalog,
		Logger:     fileLogger,
		TitleID:    title.ID,
		ChapterID:  chapterID,
		Group:      cmd.String("group"),
		SiteURL:    r.config.Catalog.SiteURL,
		ImageURL:   r.config.Catalog.ImageURL,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
