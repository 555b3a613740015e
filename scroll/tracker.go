// Package scroll tracks reading position through a rendered post: which
// table-of-contents heading is active and how far through the body the
// reader is. Work triggered by scroll and resize events is coalesced into at
// most one recomputation per frame.
package scroll

import (
	"math"
	"sync"

	"github.com/eringen/localtable/markdown"
)

// Band limits, as fractions of the viewport height. A heading inside the band
// is considered on screen for highlighting.
const (
	BandTop    = 0.2
	BandBottom = 0.8
)

// Rect is a vertical extent relative to the viewport top (negative = above).
type Rect struct {
	Top    float64
	Bottom float64
}

// Layout is a snapshot of the rendered document geometry.
type Layout struct {
	ViewportHeight  float64
	ContainerTop    float64
	ContainerHeight float64
	Headings        map[string]Rect
}

// State is what the sidebar renders from.
type State struct {
	ActiveHeadingID string  `json:"activeHeadingId"`
	Progress        float64 `json:"progress"`
}

// Progress returns how far through the container the reader is, in [0,100].
// 0 while the container top is at or below the viewport top, 100 once its
// bottom edge has scrolled above the viewport bottom. A container no taller
// than the viewport reads 100 when fully in view and 0 before it arrives.
func Progress(l Layout) float64 {
	vh := l.ViewportHeight
	span := l.ContainerHeight - vh
	if span <= 0 || math.IsNaN(span) {
		if l.ContainerTop+l.ContainerHeight <= vh {
			return 100
		}
		return 0
	}
	p := -l.ContainerTop / span * 100
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ActiveHeading picks the heading to highlight. Headings intersecting the
// middle band win, earliest first; otherwise the last heading scrolled past;
// otherwise "".
func ActiveHeading(headings []markdown.Heading, l Layout) string {
	top := l.ViewportHeight * BandTop
	bottom := l.ViewportHeight * BandBottom
	passed := ""
	for _, h := range headings {
		r, ok := l.Headings[h.ID]
		if !ok {
			continue
		}
		if r.Bottom >= top && r.Top <= bottom {
			return h.ID
		}
		if r.Top < top {
			passed = h.ID
		}
	}
	return passed
}

// Compute derives the full state for a layout.
func Compute(headings []markdown.Heading, l Layout) State {
	return State{
		ActiveHeadingID: ActiveHeading(headings, l),
		Progress:        Progress(l),
	}
}

// Tracker maintains State as layouts arrive. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	sched     FrameScheduler
	headings  []markdown.Heading
	state     State
	pending   *Layout
	cancel    func()
	listeners []func(State)
	closed    bool
}

// NewTracker creates a Tracker for headings. Recomputation runs on frames
// handed out by sched.
func NewTracker(sched FrameScheduler, headings []markdown.Heading) *Tracker {
	return &Tracker{sched: sched, headings: headings}
}

// Subscribe registers fn to receive every new State. It returns a function
// that removes the subscription.
func (t *Tracker) Subscribe(fn func(State)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
	idx := len(t.listeners) - 1
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if idx < len(t.listeners) {
			t.listeners[idx] = nil
		}
	}
}

// State returns the last computed state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Scroll records a layout after a scroll event.
func (t *Tracker) Scroll(l Layout) { t.schedule(l) }

// Resize records a layout after a viewport resize.
func (t *Tracker) Resize(l Layout) { t.schedule(l) }

// schedule keeps only the newest layout and requests a frame if none is
// outstanding.
func (t *Tracker) schedule(l Layout) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.pending = &l
	if t.cancel != nil {
		return
	}
	t.cancel = t.sched.RequestFrame(t.frame)
}

func (t *Tracker) frame() {
	t.mu.Lock()
	t.cancel = nil
	if t.closed || t.pending == nil {
		t.mu.Unlock()
		return
	}
	l := *t.pending
	t.pending = nil
	next := Compute(t.headings, l)
	changed := next != t.state
	t.state = next
	listeners := append([]func(State){}, t.listeners...)
	t.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		if fn != nil {
			fn(next)
		}
	}
}

// SetHeadings swaps in the headings of a new post body, resets the state and
// drops any pending recomputation. Subscribers see the reset state if it
// differs from the last one they were given.
func (t *Tracker) SetHeadings(headings []markdown.Heading) {
	t.mu.Lock()
	t.headings = headings
	changed := t.state != State{}
	t.state = State{}
	t.pending = nil
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	var listeners []func(State)
	if changed && !t.closed {
		listeners = append(listeners, t.listeners...)
	}
	t.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(State{})
		}
	}
}

// Close cancels pending work and ignores further events.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.pending = nil
	t.listeners = nil
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
