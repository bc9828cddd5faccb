package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ReaderView ViewState = iota
	ChapterListView
)

// Catalog supplies the data the reader shows besides navigation.
type Catalog interface {
	Title(ctx context.Context, slugOrID string) (*models.Title, error)
	ChapterImages(ctx context.Context, chapterID string) ([]models.ChapterImage, error)
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Controller *navigator.Controller
	Catalog    Catalog
	Logger     *log.Logger
	TitleID    string
	ChapterID  string
	// Group, when set, is followed from the first chapter on.
	Group    string
	SiteURL  string
	ImageURL string
}

// groupAuto leaves the group choice to the controller's defaults.
const groupAuto = -1

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	controller *navigator.Controller
	catalog    Catalog
	logger     *log.Logger
	siteURL    string
	imageURL   string

	titleID   string
	chapterID string
	title     *models.Title
	state     navigator.State
	loading   bool

	// groupChoice is groupAuto, an index into state.Groups, or len(state.Groups) for "any group".
	groupChoice int
	group       string

	pages    []models.ChapterImage
	pagesErr error

	width       int
	height      int
	chapterList list.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.accent

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := &Model{
		ctx:         ctx,
		view:        ReaderView,
		controller:  opts.Controller,
		catalog:     opts.Catalog,
		logger:      logger,
		siteURL:     opts.SiteURL,
		imageURL:    opts.ImageURL,
		titleID:     opts.TitleID,
		chapterID:   opts.ChapterID,
		groupChoice: groupAuto,
		spinner:     spin,
		help:        help.New(),
		keys:        newKeyMap(),
	}
	if opts.Group != "" {
		m.groupChoice = 0
		m.group = opts.Group
	}
	m.chapterList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	m.chapterList.Title = "Chapters"
	return m
}

// Init starts navigation to the first chapter.
func (m *Model) Init() tea.Cmd {
	return m.navigate(m.titleID, m.chapterID)
}

// State returns the navigation state currently shown.
func (m *Model) State() navigator.State { return m.state }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chapterList.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case ReaderView:
			return m.handleReaderKeys(msg)
		case ChapterListView:
			return m.handleChapterListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == ChapterListView {
		var cmd tea.Cmd
		m.chapterList, cmd = m.chapterList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgNavigated:
		state := msg.data.(navigator.State)
		if !m.controller.IsCurrent(state) {
			return m, nil
		}
		m.loading = false
		m.state = state
		m.pages = nil
		m.pagesErr = nil
		if state.TitleID != "" && state.TitleID != m.titleID {
			m.titleID = state.TitleID
			m.title = nil
		}
		m.syncGroupChoice()
		m.chapterList.SetItems(chapterItems(navigator.Listing(state.Chapters, m.group), state.ChapterID))

		var cmds []tea.Cmd
		if state.Phase == navigator.PhaseReady || state.Unavailable() {
			cmds = append(cmds, m.fetchPages(state.ChapterID))
		}
		if m.titleID != "" && (m.title == nil || m.title.ID != m.titleID) {
			cmds = append(cmds, m.fetchTitle(m.titleID))
		}
		return m, tea.Batch(cmds...)

	case MsgPagesFetched:
		res := msg.data.(pagesResult)
		if res.chapterID != m.state.ChapterID {
			return m, nil
		}
		m.pages = res.pages
		m.pagesErr = res.err
		return m, nil

	case MsgTitleFetched:
		res := msg.data.(titleResult)
		if res.err != nil {
			m.logger.Warn("failed to fetch title", "title", m.titleID, "error", res.err)
			return m, nil
		}
		if res.title == nil || res.title.ID != m.titleID {
			return m, nil
		}
		m.title = res.title
		return m, nil
	}
	return m, nil
}

// syncGroupChoice keeps groupChoice pointing at the same group after the group list changes.
func (m *Model) syncGroupChoice() {
	switch {
	case m.groupChoice == groupAuto:
		m.group = ""
	case m.group == "":
		m.groupChoice = len(m.state.Groups)
	default:
		m.groupChoice = len(m.state.Groups)
		for i, g := range m.state.Groups {
			if g == m.group {
				m.groupChoice = i
				break
			}
		}
	}
}

func (m *Model) handleReaderKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.next):
		if m.state.Next != nil {
			return m, m.navigate(m.titleID, m.state.Next.ID())
		}
	case key.Matches(msg, m.keys.prev):
		if m.state.Previous != nil {
			return m, m.navigate(m.titleID, m.state.Previous.ID())
		}
	case key.Matches(msg, m.keys.group):
		if len(m.state.Groups) > 0 {
			m.cycleGroup()
			return m, m.navigate(m.titleID, m.chapterID)
		}
	case key.Matches(msg, m.keys.retry):
		if m.state.Retryable() {
			return m, m.navigate(m.titleID, m.chapterID)
		}
	case key.Matches(msg, m.keys.chapters):
		if len(m.state.Chapters) > 0 {
			m.view = ChapterListView
		}
	case key.Matches(msg, m.keys.open):
		return m, m.openInBrowser()
	}
	return m, nil
}

// quit ends the reading session; results still in flight are dropped.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.controller != nil {
		m.controller.Reset()
	}
	return m, tea.Quit
}

func (m *Model) handleChapterListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chapterList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.chapterList, cmd = m.chapterList.Update(msg)
		return m, cmd
	}

	switch {
	case msg.String() == "ctrl+c":
		return m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = ReaderView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.chapterList.SelectedItem().(chapterItem); ok {
			m.view = ReaderView
			return m, m.navigate(m.titleID, item.entry.ID())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.chapterList, cmd = m.chapterList.Update(msg)
	return m, cmd
}

// cycleGroup steps auto -> each group -> any group -> auto.
func (m *Model) cycleGroup() {
	m.groupChoice++
	switch {
	case m.groupChoice > len(m.state.Groups):
		m.groupChoice = groupAuto
		m.group = ""
	case m.groupChoice == len(m.state.Groups):
		m.group = ""
	default:
		m.group = m.state.Groups[m.groupChoice]
	}
}

func (m *Model) requestOptions() []navigator.RequestOption {
	if m.groupChoice == groupAuto {
		return nil
	}
	return []navigator.RequestOption{navigator.WithPreferredGroup(m.group)}
}

func (m *Model) navigate(titleID, chapterID string) tea.Cmd {
	m.loading = true
	m.chapterID = chapterID
	opts := m.requestOptions()
	ctx := m.ctx

	fetch := func() tea.Msg {
		return navigatedMsg(m.controller.RequestNavigation(ctx, titleID, chapterID, opts...))
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) fetchPages(chapterID string) tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		pages, err := m.catalog.ChapterImages(ctx, chapterID)
		return pagesFetchedMsg(chapterID, pages, err)
	}
}

func (m *Model) fetchTitle(titleID string) tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		title, err := m.catalog.Title(ctx, titleID)
		return titleFetchedMsg(title, err)
	}
}

func (m *Model) openInBrowser() tea.Cmd {
	if m.title == nil || m.siteURL == "" {
		return nil
	}
	url := models.SiteURL(m.siteURL, m.title.Slug, m.chapterID)
	logger := m.logger
	return func() tea.Msg {
		if err := shared.OpenBrowser(url); err != nil {
			logger.Warn("failed to open browser", "url", url, "error", err)
		}
		return nil
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ChapterListView:
		return m.renderChapterList()
	default:
		return m.renderReader()
	}
}

func (m *Model) titleName() string {
	if m.title != nil && m.title.Name != "" {
		return m.title.Name
	}
	if m.titleID != "" {
		return m.titleID
	}
	return "mangax"
}

func (m *Model) chapterName() string {
	if m.state.Current != nil {
		return m.state.Current.Record.DisplayName()
	}
	return "Chapter " + m.chapterID
}

func (m *Model) groupMode() string {
	switch {
	case m.groupChoice == groupAuto && m.state.PreferredGroup != "":
		return m.state.PreferredGroup + " (auto)"
	case m.groupChoice == groupAuto:
		return "any group (auto)"
	case m.group == "":
		return "any group"
	default:
		return m.group
	}
}

func neighborLine(label string, e *navigator.SequenceEntry) string {
	if e == nil {
		return fmt.Sprintf("%s: none", label)
	}
	line := fmt.Sprintf("%s: %s", label, e.Record.DisplayName())
	if len(e.Record.Groups) > 0 {
		line += fmt.Sprintf(" [%s]", strings.Join(e.Record.Groups, ", "))
	}
	return line
}

func (m *Model) renderReader() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s • %s", m.titleName(), m.chapterName())))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(fmt.Sprintf("%s Loading chapter...\n", m.spinner.View()))
	case m.state.Phase == navigator.PhaseFailed && m.state.Unavailable():
		b.WriteString(styles.warn.Render("Navigation unavailable: this chapter is not in the title's chapter list"))
		b.WriteString("\n")
		b.WriteString(m.renderPages())
	case m.state.Phase == navigator.PhaseFailed && m.state.Retryable():
		b.WriteString(styles.err.Render(fmt.Sprintf("Failed to load chapters: %v", m.state.Err)))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Press r to retry"))
		b.WriteString("\n")
	case m.state.Phase == navigator.PhaseFailed:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.state.Err)))
		b.WriteString("\n")
	case m.state.Phase == navigator.PhaseReady:
		if m.state.Current != nil && len(m.state.Current.Record.Groups) > 0 {
			b.WriteString(fmt.Sprintf("Groups: %s\n", strings.Join(m.state.Current.Record.Groups, ", ")))
		}
		b.WriteString(fmt.Sprintf("Following: %s\n", m.groupMode()))
		b.WriteString(m.renderPages())
		b.WriteString("\n")
		b.WriteString(styles.accent.Render(neighborLine("Previous", m.state.Previous)))
		b.WriteString("\n")
		b.WriteString(styles.accent.Render(neighborLine("Next", m.state.Next)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPages() string {
	switch {
	case m.pagesErr != nil:
		return styles.warn.Render(fmt.Sprintf("Pages unavailable: %v", m.pagesErr)) + "\n"
	case m.pages == nil:
		return ""
	case len(m.pages) == 0:
		return "Pages: 0\n"
	}

	line := fmt.Sprintf("Pages: %d", len(m.pages))
	if m.imageURL != "" {
		line += "\n" + styles.help.Render(models.ImageURL(m.imageURL, m.pages[0].Key))
	}
	return line + "\n"
}

func (m *Model) renderChapterList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.chapterList.View(), helpView)
}
