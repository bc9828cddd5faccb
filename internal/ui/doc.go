// Package ui implements an interactive chapter reader using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [ReaderView] : The chapter being read, its pages and its previous/next neighbors
//  2. [ChapterListView] : Pick any chapter of the title, newest first
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Navigation runs through a [navigator.Controller] inside a [tea.Cmd], so the event loop never blocks on the catalog.
// A result that arrives after the user already moved on is dropped because the controller no longer reports it as current.
//
// Keyboard navigation uses vim-style bindings (h/l, n/p, g, r, c, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
