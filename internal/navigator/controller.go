package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// Catalog fetches chapter records from the remote catalog or a cache in front of it.
//
// Errors should wrap [shared.ErrTransportFailure] or [shared.ErrInvalidCatalogData]; anything else is
// reported as a transport failure.
type Catalog interface {
	ChapterRecords(ctx context.Context, titleID string) ([]models.ChapterRecord, error)
	ChapterByID(ctx context.Context, chapterID string) (*models.ChapterRecord, error)
	TitleByChapterID(ctx context.Context, chapterID string) (string, error)
}

// Phase is the lifecycle stage of a navigation request.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of navigation for one chapter.
//
// Chapters is shared between snapshots of the same request and must not be modified.
type State struct {
	Phase          Phase
	Generation     uint64
	TitleID        string
	ChapterID      string
	CurrentIndex   int
	Current        *SequenceEntry
	Previous       *SequenceEntry
	Next           *SequenceEntry
	PreferredGroup string
	Groups         []string
	Chapters       Sequence
	Err            error
}

// HasPrevious reports whether a previous chapter is available.
func (s State) HasPrevious() bool { return s.Previous != nil }

// HasNext reports whether a next chapter is available.
func (s State) HasNext() bool { return s.Next != nil }

// Retryable reports whether the failure came from the transport and the request may be issued again.
func (s State) Retryable() bool {
	return s.Err != nil && errors.Is(s.Err, shared.ErrTransportFailure)
}

// Unavailable reports whether navigation is disabled while the chapter itself can still be shown.
func (s State) Unavailable() bool {
	return s.Err != nil && errors.Is(s.Err, shared.ErrChapterNotInSequence)
}

// ControllerOpts configures a [Controller].
type ControllerOpts struct {
	Catalog Catalog
	Logger  *log.Logger
	// PreferredGroup is used when a request carries no explicit group.
	PreferredGroup string
	// IgnoreCurrentGroup disables falling back to the first group of the current chapter.
	IgnoreCurrentGroup bool
}

// RequestOption customizes a single [Controller.RequestNavigation] call.
type RequestOption func(*request)

type request struct {
	group    string
	groupSet bool
}

// WithPreferredGroup scans for neighbors published by group, overriding every default.
func WithPreferredGroup(group string) RequestOption {
	return func(r *request) {
		r.group = group
		r.groupSet = true
	}
}

// WithoutPreferredGroup resolves plain index-adjacent neighbors.
func WithoutPreferredGroup() RequestOption {
	return WithPreferredGroup("")
}

// Controller owns the navigation state of the chapter being read.
//
// Each [Controller.RequestNavigation] starts a new generation. A result is published only while its generation
// is the latest, so a slow response for a chapter the user already left never overwrites a newer one.
type Controller struct {
	catalog            Catalog
	logger             *log.Logger
	preferredGroup     string
	ignoreCurrentGroup bool

	mu        sync.Mutex
	gen       uint64
	state     State
	listeners []func(State)
}

// NewController creates a Controller in [PhaseIdle].
func NewController(opts ControllerOpts) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{
		catalog:            opts.Catalog,
		logger:             shared.WithLogger(logger, "component", "navigator"),
		preferredGroup:     opts.PreferredGroup,
		ignoreCurrentGroup: opts.IgnoreCurrentGroup,
		state:              State{Phase: PhaseIdle, CurrentIndex: -1},
	}
}

// State returns the latest published snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsCurrent reports whether s belongs to the latest request.
func (c *Controller) IsCurrent(s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.Generation == c.gen
}

// OnChange registers fn to receive every published snapshot. fn runs on the publishing goroutine.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Reset discards the current state and any request still in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.gen++
	c.state = State{Phase: PhaseIdle, Generation: c.gen, CurrentIndex: -1}
	snapshot, listeners := c.state, c.copyListeners()
	c.mu.Unlock()

	notify(listeners, snapshot)
}

// RequestNavigation resolves the neighbors of chapterID within titleID.
//
// An empty titleID is looked up through [Catalog.TitleByChapterID]. The returned State is the result of this
// request; it has also been published unless a newer request started before it completed, which [Controller.IsCurrent]
// reports.
func (c *Controller) RequestNavigation(ctx context.Context, titleID, chapterID string, opts ...RequestOption) State {
	var req request
	for _, opt := range opts {
		opt(&req)
	}

	gen := c.begin(titleID, chapterID)
	st := c.resolve(ctx, titleID, chapterID, req)
	st.Generation = gen

	if !c.publish(st) {
		c.logger.Debug("discarded stale navigation result", "chapter", chapterID, "generation", gen)
	}
	return st
}

// begin starts a new generation and publishes the loading state.
func (c *Controller) begin(titleID, chapterID string) uint64 {
	c.mu.Lock()
	c.gen++
	c.state = State{
		Phase:        PhaseLoading,
		Generation:   c.gen,
		TitleID:      titleID,
		ChapterID:    chapterID,
		CurrentIndex: -1,
	}
	gen, snapshot, listeners := c.gen, c.state, c.copyListeners()
	c.mu.Unlock()

	notify(listeners, snapshot)
	return gen
}

// publish stores st if its generation is still the latest.
func (c *Controller) publish(st State) bool {
	c.mu.Lock()
	if st.Generation != c.gen {
		c.mu.Unlock()
		return false
	}
	c.state = st
	listeners := c.copyListeners()
	c.mu.Unlock()

	notify(listeners, st)
	return true
}

func (c *Controller) resolve(ctx context.Context, titleID, chapterID string, req request) State {
	st := State{TitleID: titleID, ChapterID: chapterID, CurrentIndex: -1}

	if chapterID == "" {
		return c.fail(st, fmt.Errorf("%w: chapter id is required", shared.ErrInvalidArgument))
	}

	if c.catalog == nil {
		return c.fail(st, fmt.Errorf("%w: no catalog configured", shared.ErrTransportFailure))
	}

	if titleID == "" {
		id, err := c.catalog.TitleByChapterID(ctx, chapterID)
		if err != nil {
			return c.fail(st, err)
		}
		titleID = id
		st.TitleID = id
	}

	records, err := c.catalog.ChapterRecords(ctx, titleID)
	if err != nil {
		return c.fail(st, err)
	}

	if len(records) == 0 {
		st.Phase = PhaseReady
		st.PreferredGroup = c.pickGroup(req, nil)
		return st
	}

	seq, err := Build(records)
	if err != nil {
		return c.fail(st, err)
	}
	idx := NewGroupIndex(seq)
	st.Chapters = seq
	st.Groups = idx.Groups()

	current := seq.IndexOf(chapterID)
	if current < 0 {
		return c.fail(st, errNotInSequence(chapterID, len(seq)))
	}

	group := c.pickGroup(req, seq.At(current))
	n, err := Resolve(seq, idx, current, group)
	if err != nil {
		return c.fail(st, err)
	}

	st.Phase = PhaseReady
	st.CurrentIndex = current
	st.Current = seq.At(current)
	st.Previous = n.Previous
	st.Next = n.Next
	st.PreferredGroup = group

	c.logger.Debug("resolved navigation",
		"title", titleID,
		"chapter", chapterID,
		"index", current,
		"group", group,
		"previous", entryID(n.Previous),
		"next", entryID(n.Next),
	)
	return st
}

// pickGroup applies group precedence: request override, configured default, then the current chapter's first group.
func (c *Controller) pickGroup(req request, current *SequenceEntry) string {
	if req.groupSet {
		return req.group
	}
	if c.preferredGroup != "" {
		return c.preferredGroup
	}
	if c.ignoreCurrentGroup || current == nil {
		return ""
	}
	return current.Record.FirstGroup()
}

// fail turns err into a failed state with no neighbors.
func (c *Controller) fail(st State, err error) State {
	err = classify(err)

	switch {
	case errors.Is(err, shared.ErrInvalidCatalogData):
		c.logger.Error("catalog returned invalid data", "title", st.TitleID, "chapter", st.ChapterID, "err", err)
	case errors.Is(err, shared.ErrChapterNotInSequence):
		c.logger.Warn("navigation unavailable", "title", st.TitleID, "chapter", st.ChapterID, "err", err)
	default:
		c.logger.Warn("navigation request failed", "title", st.TitleID, "chapter", st.ChapterID, "err", err)
	}

	st.Phase = PhaseFailed
	st.CurrentIndex = -1
	st.Current, st.Previous, st.Next = nil, nil, nil
	st.Err = err
	return st
}

// classify keeps known navigation errors and reports anything else as a transport failure.
func classify(err error) error {
	for _, known := range []error{
		shared.ErrTransportFailure,
		shared.ErrInvalidCatalogData,
		shared.ErrChapterNotInSequence,
		shared.ErrInvalidArgument,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", shared.ErrTransportFailure, err)
}

func (c *Controller) copyListeners() []func(State) {
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]func(State), len(c.listeners))
	copy(out, c.listeners)
	return out
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}

func entryID(e *SequenceEntry) string {
	if e == nil {
		return ""
	}
	return e.Record.ID
}
