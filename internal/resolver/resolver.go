// Package resolver narrows partial user input down to a tmux target.
//
// The state machine is Start -> SessionChosen -> WindowChosen -> PaneChosen,
// with Cancelled reachable from anywhere. The phase follows the typed text:
// no ':' filters sessions, ':' lists windows of the typed session, '.' lists
// panes of the typed window. Selecting a session or window primes the input
// with the next separator so narrowing continues without retyping.
//
// The resolver holds no UI state. A front end feeds it text changes and
// accept/cancel events and renders the returned items.
package resolver

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
)

// Phase is a resolver state.
type Phase int

const (
	Start Phase = iota
	SessionChosen
	WindowChosen
	PaneChosen // terminal; the pane may still be absent after a skip
	Cancelled  // terminal; no target
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case SessionChosen:
		return "session-chosen"
	case WindowChosen:
		return "window-chosen"
	case PaneChosen:
		return "pane-chosen"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// State is a snapshot of the resolution in progress.
type State struct {
	Phase Phase
	// Input is the text the front end should show. Accept primes it with
	// "session:" or "session:window." after a selection.
	Input string
	// Target is the target narrowed so far. Final once Done.
	Target model.Target
	// Err is the parse error of the last free-form accept, if any.
	Err error
	// Filtered is set when a window or pane filter follows the last
	// separator. Front ends then highlight the first match rather than the
	// leading skip row.
	Filtered bool
}

// Done reports whether the resolution has ended.
func (s State) Done() bool {
	return s.Phase == PaneChosen || s.Phase == Cancelled
}

// Result returns the resolved target, or false when cancelled or unfinished.
func (s State) Result() (model.Target, bool) {
	if s.Phase != PaneChosen {
		return model.Target{}, false
	}
	return s.Target, true
}

// ItemKind tells Accept what selecting an item means.
type ItemKind int

const (
	// KindRecent is a previously used target; selecting it finishes.
	KindRecent ItemKind = iota
	// KindSession moves on to window selection.
	KindSession
	// KindWindow moves on to pane selection.
	KindWindow
	// KindPane finishes with a fully specified target.
	KindPane
	// KindSkip finishes, leaving the next component to tmux's active one.
	KindSkip
)

// Section names used to group items.
const (
	SectionRecent   = "Recent targets"
	SectionSessions = "Sessions"
	SectionWindows  = "Windows"
	SectionPanes    = "Panes"
)

// Item is one selectable row.
type Item struct {
	Kind        ItemKind
	Label       string
	Description string
	Section     string
	Target      model.Target
	// Matched holds the byte offsets in Label matched by the filter.
	Matched []int
}

// Resolver runs one target resolution against live listings.
type Resolver struct {
	lister   mux.Lister
	recent   []model.Target
	sessions []model.Session
}

// New creates a Resolver. recent is ordered most-recent-first.
func New(lister mux.Lister, recent []model.Target) *Resolver {
	return &Resolver{lister: lister, recent: recent}
}

// Begin snapshots the session listing and returns the start state.
func (r *Resolver) Begin(ctx context.Context) State {
	r.sessions = r.lister.ListSessions(ctx)
	return State{Phase: Start}
}

// OnInputChanged recomputes the state and the items to display for text.
func (r *Resolver) OnInputChanged(ctx context.Context, state State, text string) (State, []Item) {
	if state.Phase == Cancelled {
		return state, nil
	}
	next := State{Input: text}
	trimmed := strings.TrimSpace(text)

	session, rest, hasColon := strings.Cut(trimmed, ":")
	if !hasColon {
		next.Phase = Start
		next.Target = model.Target{Session: trimmed}
		if trimmed == "" {
			return next, r.startItems()
		}
		return next, r.sessionItems(trimmed)
	}

	next.Target = model.Target{Session: session}
	if session == "" {
		// ":..." can never resolve; only free-form accept (which reports
		// the error) or cancel remain.
		next.Phase = SessionChosen
		return next, nil
	}

	window, paneFilter, hasDot := strings.Cut(rest, ".")
	if !hasDot {
		next.Phase = SessionChosen
		next.Filtered = rest != ""
		return next, r.windowItems(ctx, session, rest)
	}

	next.Phase = WindowChosen
	next.Target.Window = window
	next.Filtered = paneFilter != ""
	return next, r.paneItems(ctx, session, window, paneFilter)
}

// Accept applies an accept event. item is the highlighted row, or nil when
// nothing is highlighted, in which case input is parsed as a target.
func (r *Resolver) Accept(state State, input string, item *Item) State {
	if state.Phase == Cancelled {
		return state
	}
	if item == nil {
		t, err := model.ParseTarget(input)
		if err != nil {
			state.Input = input
			state.Err = err
			return state
		}
		return State{Phase: PaneChosen, Input: t.String(), Target: t}
	}

	switch item.Kind {
	case KindSession:
		t := model.Target{Session: item.Target.Session}
		return State{Phase: SessionChosen, Input: t.Session + ":", Target: t}
	case KindWindow:
		t := item.Target.WithWindow(item.Target.Window)
		return State{Phase: WindowChosen, Input: t.String() + ".", Target: t}
	default:
		return State{Phase: PaneChosen, Input: item.Target.String(), Target: item.Target}
	}
}

// Cancel ends the resolution without a target.
func (r *Resolver) Cancel(state State) State {
	return State{Phase: Cancelled, Input: state.Input}
}

func (r *Resolver) startItems() []Item {
	var items []Item
	for _, t := range r.recent {
		items = append(items, Item{
			Kind:        KindRecent,
			Label:       t.String(),
			Description: "Recent",
			Section:     SectionRecent,
			Target:      t,
		})
	}
	for _, s := range r.sessions {
		items = append(items, Item{
			Kind:        KindSession,
			Label:       s.Name,
			Description: "Session",
			Section:     SectionSessions,
			Target:      s.Target(),
		})
	}
	return items
}

func (r *Resolver) sessionItems(filter string) []Item {
	names := make([]string, len(r.sessions))
	for i, s := range r.sessions {
		names[i] = s.Name
	}

	var items []Item
	for _, m := range match(filter, names) {
		items = append(items, Item{
			Kind:        KindSession,
			Label:       m.Str,
			Description: "Matched session",
			Section:     SectionSessions,
			Target:      r.sessions[m.Index].Target(),
			Matched:     m.MatchedIndexes,
		})
	}
	if len(items) == 0 {
		items = append(items, Item{
			Kind:        KindSession,
			Label:       filter,
			Description: "Use this as session name",
			Section:     SectionSessions,
			Target:      model.Target{Session: filter},
		})
	}
	return items
}

func (r *Resolver) windowItems(ctx context.Context, session, filter string) []Item {
	sessionOnly := model.Target{Session: session}
	windows, err := r.lister.ListWindows(ctx, session)
	if err != nil {
		return []Item{{
			Kind:        KindSkip,
			Label:       session,
			Description: "Cannot list windows; use the active window",
			Section:     SectionWindows,
			Target:      sessionOnly,
		}}
	}

	items := []Item{{
		Kind:        KindSkip,
		Label:       session,
		Description: "Skip: use the active window",
		Section:     SectionWindows,
		Target:      sessionOnly,
	}}

	labels := make([]string, len(windows))
	for i, w := range windows {
		labels[i] = w.Index + ": " + w.Name
	}
	for _, m := range match(filter, labels) {
		items = append(items, Item{
			Kind:        KindWindow,
			Label:       m.Str,
			Description: "Window",
			Section:     SectionWindows,
			Target:      windows[m.Index].Target(session),
			Matched:     m.MatchedIndexes,
		})
	}

	if filter != "" && len(items) == 1 {
		items = append(items, Item{
			Kind:        KindWindow,
			Label:       session + ":" + filter,
			Description: "Custom window",
			Section:     SectionWindows,
			Target:      model.Target{Session: session, Window: filter},
		})
	}
	return items
}

func (r *Resolver) paneItems(ctx context.Context, session, window, filter string) []Item {
	windowOnly := model.Target{Session: session, Window: window}
	panes := r.lister.ListPanes(ctx, session, window)
	if len(panes) == 0 {
		return []Item{{
			Kind:        KindSkip,
			Label:       windowOnly.String(),
			Description: "Cannot list panes; use the active pane",
			Section:     SectionPanes,
			Target:      windowOnly,
		}}
	}

	items := []Item{{
		Kind:        KindSkip,
		Label:       windowOnly.String(),
		Description: "Skip: use the active pane",
		Section:     SectionPanes,
		Target:      windowOnly,
	}}

	lower := strings.ToLower(filter)
	for _, p := range panes {
		label := "Pane " + p.Index + " (" + p.ID + ")"
		if lower != "" && !strings.HasPrefix(p.Index, lower) && !strings.Contains(strings.ToLower(p.ID), lower) {
			continue
		}
		items = append(items, Item{
			Kind:        KindPane,
			Label:       label,
			Description: "Pane",
			Section:     SectionPanes,
			Target:      p.Target(session, window),
		})
	}

	if filter != "" && len(items) == 1 {
		custom := windowOnly.WithPane(filter)
		items = append(items, Item{
			Kind:        KindPane,
			Label:       custom.String(),
			Description: "Custom pane",
			Section:     SectionPanes,
			Target:      custom,
		})
	}
	return items
}

// match filters candidates case-insensitively. An empty pattern keeps every
// candidate in its original order; otherwise the best matches come first.
func match(pattern string, candidates []string) fuzzy.Matches {
	if pattern == "" {
		all := make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			all[i] = fuzzy.Match{Str: c, Index: i}
		}
		return all
	}
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	matches := fuzzy.Find(strings.ToLower(pattern), lowered)
	for i := range matches {
		matches[i].Str = candidates[matches[i].Index]
	}
	return matches
}
