package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgNavigated MsgKind = iota
	MsgPagesFetched
	MsgTitleFetched
)

type pagesResult struct {
	chapterID string
	pages     []models.ChapterImage
	err       error
}

type titleResult struct {
	title *models.Title
	err   error
}

// navigatedMsg is the constructor for [MsgNavigated]
func navigatedMsg(state navigator.State) Msg {
	return Msg{kind: MsgNavigated, data: state}
}

// pagesFetchedMsg is the constructor for [MsgPagesFetched]
func pagesFetchedMsg(chapterID string, pages []models.ChapterImage, err error) Msg {
	return Msg{kind: MsgPagesFetched, data: pagesResult{chapterID, pages, err}}
}

// titleFetchedMsg is the constructor for [MsgTitleFetched]
func titleFetchedMsg(title *models.Title, err error) Msg {
	return Msg{kind: MsgTitleFetched, data: titleResult{title, err}}
}
