package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mangax/internal/navigator"
)

var (
	_ list.Item = chapterItem{}
)

// chapterItem wraps [navigator.SequenceEntry] to implement [list.Item].
type chapterItem struct {
	entry   navigator.SequenceEntry
	current bool
}

func (i chapterItem) FilterValue() string {
	return i.entry.Record.Label + " " + strings.Join(i.entry.Record.Groups, " ")
}

func (i chapterItem) Title() string {
	title := i.entry.Record.DisplayName()
	if i.current {
		title += " (reading)"
	}
	return title
}

func (i chapterItem) Description() string {
	desc := "no group"
	if len(i.entry.Record.Groups) > 0 {
		desc = strings.Join(i.entry.Record.Groups, ", ")
	}
	if !i.entry.Record.PublishedAt.IsZero() {
		desc += " • " + i.entry.Record.PublishedAt.Format("2006-01-02")
	}
	return desc
}

func chapterItems(entries []navigator.SequenceEntry, currentID string) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = chapterItem{entry: e, current: e.ID() == currentID}
	}
	return items
}
