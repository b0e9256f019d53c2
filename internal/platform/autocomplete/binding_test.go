package autocomplete

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// =========== Manual scheduler ===========

type manualTask struct {
	fn        func()
	cancelled bool
	fired     bool
}

func (t *manualTask) Cancel() bool {
	if t.fired {
		return false
	}
	t.cancelled = true
	return true
}

// manualScheduler collects scheduled tasks and fires them on demand, so the
// debounce and blur-grace timers are driven deterministically.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) After(_ time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// fire runs every pending non-cancelled task once, in scheduling order.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	pending := s.tasks
	s.tasks = nil
	s.mu.Unlock()

	for _, t := range pending {
		if !t.cancelled {
			t.fired = true
			t.fn()
		}
	}
}

// =========== Fake searcher ===========

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]Suggestion
	err     error
	hook    func(query string)
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string][]Suggestion{}}
}

func (f *fakeSearcher) Search(_ context.Context, query, _ string) ([]Suggestion, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	hook := f.hook
	err := f.err
	res := f.results[query]
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// =========== Test form ===========

type testForm struct {
	code string
	desc string
}

func (f *testForm) fields() FieldRef {
	return FieldRef{Code: &f.code, Description: &f.desc}
}

func newTestBinding(t *testing.T, form *testForm, searcher Searcher) (*Binding, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	b := NewBinding(searcher, form.fields(), zerolog.Nop(), WithScheduler(sched))
	t.Cleanup(b.Close)
	return b, sched
}

// =========== Debounce ===========

func TestDebounce_RapidKeystrokesSearchOnce(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()
	searcher.results["ABC"] = []Suggestion{{Code: "A00", Description: "Cholera"}}

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("A", ReasonTyped)
	b.TextChanged("AB", ReasonTyped)
	b.TextChanged("ABC", ReasonTyped)

	if v := b.View(); !v.Loading || !v.Open {
		t.Errorf("expected loading+open while search pending, got %+v", v)
	}

	sched.fire()

	if got := searcher.calls(); len(got) != 1 || got[0] != "ABC" {
		t.Errorf("expected one search for ABC, got %v", got)
	}
	v := b.View()
	if v.Loading {
		t.Error("loading must clear after search settles")
	}
	if !v.Open || len(v.Suggestions) != 1 {
		t.Errorf("expected open list with one suggestion, got %+v", v)
	}
}

func TestDebounce_SeparatedKeystrokesSearchTwice(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("A", ReasonTyped)
	sched.fire()
	b.TextChanged("AB", ReasonTyped)
	sched.fire()

	if got := searcher.calls(); len(got) != 2 || got[0] != "A" || got[1] != "AB" {
		t.Errorf("expected searches for A then AB, got %v", got)
	}
}

func TestDebounce_EmptyQueryNeverSearches(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("", ReasonTyped)
	sched.fire()

	if got := searcher.calls(); len(got) != 0 {
		t.Errorf("empty text must not search, got %v", got)
	}
}

// =========== Clear ===========

func TestClear_EmptiesBoundFieldsSynchronously(t *testing.T) {
	form := &testForm{code: "J00", desc: "Flu"}
	searcher := newFakeSearcher()

	b, sched := newTestBinding(t, form, searcher)

	if v := b.View(); v.Text != "J00 - Flu" {
		t.Fatalf("expected resolved initial display, got %q", v.Text)
	}

	b.TextChanged("", ReasonCleared)

	if form.code != "" || form.desc != "" {
		t.Errorf("expected fields cleared, got %q/%q", form.code, form.desc)
	}
	if v := b.View(); v.Text != "" || v.Open || v.Loading {
		t.Errorf("expected idle view, got %+v", v)
	}

	sched.fire()
	if len(searcher.calls()) != 0 {
		t.Error("clearing must not trigger a search")
	}
}

// =========== Selection ===========

func TestSelect_CommitsCodeAndDescription(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()

	b, _ := newTestBinding(t, form, searcher)

	b.Select(&Suggestion{Code: "J00", Description: "Flu"})

	if form.code != "J00" || form.desc != "Flu" {
		t.Errorf("expected fields committed, got %q/%q", form.code, form.desc)
	}
	v := b.View()
	if v.Text != "J00 - Flu" {
		t.Errorf("expected display text, got %q", v.Text)
	}
	if v.Open || len(v.Suggestions) != 0 {
		t.Errorf("expected closed empty list, got %+v", v)
	}
}

func TestSelect_NilDeselects(t *testing.T) {
	form := &testForm{code: "J00", desc: "Flu"}
	searcher := newFakeSearcher()

	b, _ := newTestBinding(t, form, searcher)
	b.Select(nil)

	if form.code != "" || form.desc != "" {
		t.Errorf("expected fields cleared, got %q/%q", form.code, form.desc)
	}
	if v := b.View(); v.Text != "" {
		t.Errorf("expected empty display, got %q", v.Text)
	}
}

func TestEnter_CommitsFirstSuggestion(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()
	searcher.results["gri"] = []Suggestion{
		{Code: "A1", Description: "X"},
		{Code: "A2", Description: "Y"},
	}

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("gri", ReasonTyped)
	sched.fire()

	if !b.EnterPressed() {
		t.Fatal("expected Enter to be consumed while suggestions are open")
	}
	if form.code != "A1" || form.desc != "X" {
		t.Errorf("expected first suggestion committed, got %q/%q", form.code, form.desc)
	}
	if v := b.View(); v.Open {
		t.Error("expected list closed after Enter")
	}
}

func TestEnter_NotConsumedWithoutSuggestions(t *testing.T) {
	form := &testForm{}
	b, _ := newTestBinding(t, form, newFakeSearcher())

	if b.EnterPressed() {
		t.Error("Enter with no suggestions must fall through to form submit")
	}
}

// =========== Blur ===========

func TestBlur_RevertsEditedSelection(t *testing.T) {
	form := &testForm{code: "J00", desc: "Flu"}
	searcher := newFakeSearcher()

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("J00 - Flu but edited", ReasonTyped)
	b.Blurred()
	sched.fire() // grace delay, then reconcile (pending search is cancelled by it)

	v := b.View()
	if v.Text != "J00 - Flu" {
		t.Errorf("expected display reverted to fields, got %q", v.Text)
	}
	if form.code != "J00" || form.desc != "Flu" {
		t.Errorf("bound fields must be untouched, got %q/%q", form.code, form.desc)
	}
}

func TestBlur_ClearsAbandonedFreeText(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("gri", ReasonTyped)
	b.Blurred()
	sched.fire()

	v := b.View()
	if v.Text != "" {
		t.Errorf("abandoned text must clear, got %q", v.Text)
	}
	if form.code != "" || form.desc != "" {
		t.Errorf("fields must stay empty, got %q/%q", form.code, form.desc)
	}
}

// =========== Stale searches ===========

func TestSupersededSearchResultNeverApplies(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()
	searcher.results["old"] = []Suggestion{{Code: "OLD", Description: "stale"}}

	b, sched := newTestBinding(t, form, searcher)

	// While the "old" search is executing, a new keystroke supersedes it.
	searcher.hook = func(query string) {
		if query == "old" {
			searcher.hook = nil
			b.TextChanged("new", ReasonTyped)
		}
	}

	b.TextChanged("old", ReasonTyped)
	sched.fire()

	v := b.View()
	for _, s := range v.Suggestions {
		if s.Code == "OLD" {
			t.Error("superseded search result was applied")
		}
	}
	if !v.Loading {
		t.Error("newer search should still be pending")
	}
}

func TestSearchFailureDegradesToNoSuggestions(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()
	searcher.err = fmt.Errorf("backend down")

	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("gri", ReasonTyped)
	sched.fire()

	v := b.View()
	if v.Open || v.Loading || len(v.Suggestions) != 0 {
		t.Errorf("expected closed empty list after failure, got %+v", v)
	}
}

// =========== Resync ===========

func TestResync_RecomputesFromFields(t *testing.T) {
	form := &testForm{}
	b, _ := newTestBinding(t, form, newFakeSearcher())

	// Owning form loads a record.
	form.code, form.desc = "I10", "Essential hypertension"
	b.Resync()

	if v := b.View(); v.Text != "I10 - Essential hypertension" {
		t.Errorf("expected resynced display, got %q", v.Text)
	}

	// Form reset.
	form.code, form.desc = "", ""
	b.Resync()

	if v := b.View(); v.Text != "" {
		t.Errorf("expected cleared display after reset, got %q", v.Text)
	}
}

func TestResync_NoopWhenDisplayMatches(t *testing.T) {
	form := &testForm{code: "I10", desc: "Essential hypertension"}
	searcher := newFakeSearcher()
	b, sched := newTestBinding(t, form, searcher)

	b.Resync() // display already matches; must not cancel anything

	b.TextChanged("I10 - Essential hypertension", ReasonReset)
	b.Resync()
	sched.fire()

	if len(searcher.calls()) != 0 {
		t.Error("resync must never search")
	}
	if v := b.View(); v.Text != "I10 - Essential hypertension" {
		t.Errorf("unexpected display %q", v.Text)
	}
}

// =========== Close ===========

func TestClose_CancelsPendingWork(t *testing.T) {
	form := &testForm{}
	searcher := newFakeSearcher()
	b, sched := newTestBinding(t, form, searcher)

	b.TextChanged("gri", ReasonTyped)
	b.Close()
	sched.fire()

	if len(searcher.calls()) != 0 {
		t.Error("closed binding must not search")
	}

	b.TextChanged("more", ReasonTyped)
	if v := b.View(); strings.Contains(v.Text, "more") {
		t.Error("closed binding must ignore events")
	}
}

// =========== Wall-clock scheduler ===========

func TestTimerScheduler_FiresAndCancels(t *testing.T) {
	sched := NewTimerScheduler()

	fired := make(chan struct{})
	sched.After(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("task never fired")
	}

	cancelled := sched.After(time.Hour, func() { t.Error("cancelled task fired") })
	if !cancelled.Cancel() {
		t.Error("expected Cancel to report success")
	}
}
