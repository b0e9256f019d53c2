// Package autocomplete implements the debounced remote-search controller
// behind the diagnosis pickers: free text typed into a control is debounced,
// searched against the hospital API, and a chosen suggestion is committed as
// a {code, description} pair into two fields of the owning form.
package autocomplete

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// phase is the binding's state tag. The flags the UI renders (open, loading)
// are derived from it, so they cannot drift apart.
type phase int

const (
	phaseIdle phase = iota
	phaseSearching
	phaseSuggesting
	phaseResolved
)

const (
	defaultDebounce = 500 * time.Millisecond
	defaultGrace    = 150 * time.Millisecond
)

// Suggestion is one candidate returned by the remote search.
type Suggestion struct {
	Code        string
	Description string
}

// Display is the committed text form of a suggestion.
func (s Suggestion) Display() string {
	return s.Code + " - " + s.Description
}

// Searcher issues the remote search backing a binding. mode selects the
// search variant the endpoint supports (by code, by description, ...).
type Searcher interface {
	Search(ctx context.Context, query, mode string) ([]Suggestion, error)
}

// Fields is the pair of form fields a binding writes its selection into.
type Fields interface {
	Get() (code, description string)
	Set(code, description string)
	Clear()
}

// FieldRef is a Fields implementation over two string variables of an
// owning form struct.
type FieldRef struct {
	Code        *string
	Description *string
}

func (f FieldRef) Get() (string, string) { return *f.Code, *f.Description }
func (f FieldRef) Set(code, desc string) { *f.Code = code; *f.Description = desc }
func (f FieldRef) Clear()                { *f.Code = ""; *f.Description = "" }

// ChangeReason says why the input text changed.
type ChangeReason int

const (
	// ReasonTyped is a user keystroke; it schedules a debounced search.
	ReasonTyped ChangeReason = iota
	// ReasonCleared is an explicit clear; it also clears the bound fields.
	ReasonCleared
	// ReasonReset is a programmatic display update with no side effects.
	ReasonReset
)

// View is a consistent snapshot of what the control should render.
type View struct {
	Text        string
	Suggestions []Suggestion
	Open        bool
	Loading     bool
}

// Binding mediates between one text control and a pair of form fields.
// All methods are safe for concurrent use; search results and timer firings
// are applied under the same lock as user events, and a generation counter
// guarantees a superseded search can never overwrite newer state.
type Binding struct {
	searcher Searcher
	fields   Fields
	sched    Scheduler
	log      zerolog.Logger
	ctx      context.Context

	delay time.Duration
	grace time.Duration
	mode  string

	mu          sync.Mutex
	phase       phase
	text        string
	suggestions []Suggestion
	pending     Task
	blurTask    Task
	gen         uint64
	closed      bool
}

// BindingOption configures a Binding.
type BindingOption func(*Binding)

// WithScheduler substitutes the timer scheduler.
func WithScheduler(s Scheduler) BindingOption {
	return func(b *Binding) { b.sched = s }
}

// WithDebounce sets the search debounce delay.
func WithDebounce(d time.Duration) BindingOption {
	return func(b *Binding) { b.delay = d }
}

// WithBlurGrace sets the delay between blur and reconciliation, long enough
// for a click on a suggestion to land first.
func WithBlurGrace(d time.Duration) BindingOption {
	return func(b *Binding) { b.grace = d }
}

// WithMode sets the search mode passed to the Searcher.
func WithMode(mode string) BindingOption {
	return func(b *Binding) { b.mode = mode }
}

// WithContext sets the base context for search calls.
func WithContext(ctx context.Context) BindingOption {
	return func(b *Binding) { b.ctx = ctx }
}

// NewBinding creates a binding over the given searcher and field pair. If
// the fields are already populated the binding starts resolved, displaying
// "{code} - {description}".
func NewBinding(searcher Searcher, fields Fields, log zerolog.Logger, opts ...BindingOption) *Binding {
	b := &Binding{
		searcher: searcher,
		fields:   fields,
		sched:    NewTimerScheduler(),
		log:      log,
		ctx:      context.Background(),
		delay:    defaultDebounce,
		grace:    defaultGrace,
	}
	for _, opt := range opts {
		opt(b)
	}

	if code, desc := fields.Get(); code != "" && desc != "" {
		b.text = Suggestion{Code: code, Description: desc}.Display()
		b.phase = phaseResolved
	}
	return b
}

// View returns the current render snapshot.
func (b *Binding) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := View{
		Text:        b.text,
		Suggestions: append([]Suggestion(nil), b.suggestions...),
		Loading:     b.phase == phaseSearching,
	}
	v.Open = b.phase == phaseSearching || (b.phase == phaseSuggesting && len(b.suggestions) > 0)
	return v
}

// TextChanged handles an input-text change. The displayed text always
// updates immediately; only the search is debounced. Clearing the text also
// clears the bound fields — an empty control means no selection.
func (b *Binding) TextChanged(text string, reason ChangeReason) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.text = text

	switch {
	case reason == ReasonCleared || text == "":
		b.cancelPendingLocked()
		b.suggestions = nil
		b.phase = phaseIdle
		b.fields.Clear()

	case reason == ReasonTyped:
		b.cancelPendingLocked()
		b.phase = phaseSearching
		gen := b.gen
		query := text
		b.pending = b.sched.After(b.delay, func() {
			b.runSearch(gen, query)
		})
	}
}

// runSearch executes the debounced remote search. The searcher is called
// without the lock held; the result is applied only if this search is still
// the latest one.
func (b *Binding) runSearch(gen uint64, query string) {
	results, err := b.searcher.Search(b.ctx, query, b.mode)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || gen != b.gen {
		return
	}

	if err != nil {
		b.log.Warn().Err(err).Str("query", query).Msg("autocomplete search failed")
		b.suggestions = nil
		b.phase = phaseSuggesting
		return
	}

	if results == nil {
		results = []Suggestion{}
	}
	b.suggestions = results
	b.phase = phaseSuggesting
}

// Select commits a suggestion into the bound fields, or clears both when
// called with nil (explicit deselect).
func (b *Binding) Select(s *Suggestion) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.selectLocked(s)
}

func (b *Binding) selectLocked(s *Suggestion) {
	b.cancelPendingLocked()
	b.suggestions = nil

	if s == nil {
		b.fields.Clear()
		b.text = ""
		b.phase = phaseIdle
		return
	}

	b.fields.Set(s.Code, s.Description)
	b.text = s.Display()
	b.phase = phaseResolved
}

// EnterPressed commits the first open suggestion. It reports whether the key
// was consumed, so the caller can suppress the form's default submit.
func (b *Binding) EnterPressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.phase != phaseSuggesting || len(b.suggestions) == 0 {
		return false
	}
	first := b.suggestions[0]
	b.selectLocked(&first)
	return true
}

// Blurred schedules the post-blur reconciliation after a short grace period
// so that a click on a suggestion can register first.
func (b *Binding) Blurred() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.blurTask != nil {
		b.blurTask.Cancel()
	}
	b.blurTask = b.sched.After(b.grace, b.reconcile)
}

// reconcile closes the list and squares the displayed text with the bound
// fields: abandoned free text reverts to empty, an edited-over selection
// reverts to "{code} - {description}".
func (b *Binding) reconcile() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.cancelPendingLocked()
	b.suggestions = nil

	code, desc := b.fields.Get()
	if code == "" && desc == "" {
		b.text = ""
		b.phase = phaseIdle
		return
	}

	b.text = Suggestion{Code: code, Description: desc}.Display()
	b.phase = phaseResolved
}

// Resync recomputes the displayed text after the owning form changed the
// bound fields externally (record load, form reset). It is a no-op when the
// computed display already matches, so it never fights in-progress typing
// caused by the binding's own writes.
func (b *Binding) Resync() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	code, desc := b.fields.Get()
	var want string
	if code != "" && desc != "" {
		want = Suggestion{Code: code, Description: desc}.Display()
	}
	if want == b.text {
		return
	}

	b.cancelPendingLocked()
	b.suggestions = nil
	b.text = want
	if want == "" {
		b.phase = phaseIdle
	} else {
		b.phase = phaseResolved
	}
}

// Close releases the binding on unmount, cancelling any pending debounce or
// blur reconciliation. Further events are ignored.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cancelPendingLocked()
	if b.blurTask != nil {
		b.blurTask.Cancel()
		b.blurTask = nil
	}
}

// cancelPendingLocked cancels the scheduled search, if any, and bumps the
// generation so an already-running search cannot apply its result.
func (b *Binding) cancelPendingLocked() {
	if b.pending != nil {
		b.pending.Cancel()
		b.pending = nil
	}
	b.gen++
}
