package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
)

// NavigationPath is the route served by [NavigationHandler].
const NavigationPath = "/api/navigation"

// ChapterJSON is a chapter in a navigation response.
type ChapterJSON struct {
	ID        string     `json:"id"`
	Chapter   string     `json:"chapter"`
	Volume    string     `json:"volume,omitempty"`
	Groups    []string   `json:"groups"`
	Published *time.Time `json:"published_at,omitempty"`
	Index     int        `json:"index"`
}

// NavigationResponse is the JSON rendering of a [navigator.State].
type NavigationResponse struct {
	Phase          string       `json:"phase"`
	TitleID        string       `json:"title_id,omitempty"`
	ChapterID      string       `json:"chapter_id"`
	CurrentIndex   int          `json:"current_index"`
	Current        *ChapterJSON `json:"current"`
	Previous       *ChapterJSON `json:"previous"`
	Next           *ChapterJSON `json:"next"`
	PreferredGroup string       `json:"preferred_group,omitempty"`
	Groups         []string     `json:"groups"`
	Error          string       `json:"error,omitempty"`
	Retryable      bool         `json:"retryable,omitempty"`
	Unavailable    bool         `json:"unavailable,omitempty"`
}

func chapterJSON(e *navigator.SequenceEntry) *ChapterJSON {
	if e == nil {
		return nil
	}
	c := &ChapterJSON{
		ID:      e.ID(),
		Chapter: e.Record.Label,
		Volume:  e.Record.Volume,
		Groups:  e.Record.Groups,
		Index:   e.Index,
	}
	if c.Groups == nil {
		c.Groups = []string{}
	}
	if !e.Record.PublishedAt.IsZero() {
		t := e.Record.PublishedAt
		c.Published = &t
	}
	return c
}

// NewNavigationResponse renders s for JSON clients.
func NewNavigationResponse(s navigator.State) NavigationResponse {
	resp := NavigationResponse{
		Phase:          s.Phase.String(),
		TitleID:        s.TitleID,
		ChapterID:      s.ChapterID,
		CurrentIndex:   s.CurrentIndex,
		Current:        chapterJSON(s.Current),
		Previous:       chapterJSON(s.Previous),
		Next:           chapterJSON(s.Next),
		PreferredGroup: s.PreferredGroup,
		Groups:         s.Groups,
		Retryable:      s.Retryable(),
		Unavailable:    s.Unavailable(),
	}
	if resp.Groups == nil {
		resp.Groups = []string{}
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	return resp
}

// NavigationHandler resolves the neighbors of a chapter.
//
// Every request gets its own [navigator.Controller] so concurrent clients never share state.
type NavigationHandler struct {
	opts   navigator.ControllerOpts
	logger *log.Logger
}

// NewNavigationHandler creates a [NavigationHandler]. opts.Catalog supplies the chapter records.
func NewNavigationHandler(opts navigator.ControllerOpts, logger *log.Logger) *NavigationHandler {
	opts.Logger = logger
	return &NavigationHandler{opts: opts, logger: shared.WithLogger(logger, "component", "navigation")}
}

// Routes returns the HTTP routes this handler serves.
func (h *NavigationHandler) Routes() []string {
	return []string{NavigationPath}
}

// ServeHTTP handles GET /api/navigation?title=&chapter=&group=.
//
// title may be omitted and is then looked up from the chapter. A group parameter, even an empty one, overrides
// the configured group preference.
func (h *NavigationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	chapterID := q.Get("chapter")
	if chapterID == "" {
		writeError(w, http.StatusBadRequest, "Missing chapter parameter")
		return
	}

	var opts []navigator.RequestOption
	if q.Has("group") {
		opts = append(opts, navigator.WithPreferredGroup(q.Get("group")))
	}

	controller := navigator.NewController(h.opts)
	state := controller.RequestNavigation(r.Context(), q.Get("title"), chapterID, opts...)

	writeJSON(w, navigationStatus(state), NewNavigationResponse(state))
}

// navigationStatus maps a state to an HTTP status. A chapter outside its title's sequence is still a 200
// since the chapter itself can be shown.
func navigationStatus(s navigator.State) int {
	switch {
	case s.Err == nil, s.Unavailable():
		return http.StatusOK
	case errors.Is(s.Err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(s.Err, shared.ErrTitleNotFound), errors.Is(s.Err, shared.ErrChapterNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
