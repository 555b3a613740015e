package scroll

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/eringen/localtable/markdown"
)

// manualScheduler runs frames only when flush is called.
type manualScheduler struct {
	mu       sync.Mutex
	queued   map[int]func()
	next     int
	requests int
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{queued: make(map[int]func())}
}

func (m *manualScheduler) RequestFrame(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.requests++
	m.queued[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.queued, id)
		m.mu.Unlock()
	}
}

func (m *manualScheduler) flush() {
	m.mu.Lock()
	queued := m.queued
	m.queued = make(map[int]func())
	m.mu.Unlock()
	for _, fn := range queued {
		fn()
	}
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}

var testHeadings = markdown.Parse("# Intro\nhello\n## Sourcing\nfarms\n## Delivery\nvans").Headings

func TestProgress(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		want   float64
	}{
		{"top at viewport top", Layout{ViewportHeight: 800, ContainerTop: 0, ContainerHeight: 3000}, 0},
		{"not reached yet", Layout{ViewportHeight: 800, ContainerTop: 400, ContainerHeight: 3000}, 0},
		{"halfway", Layout{ViewportHeight: 800, ContainerTop: -1100, ContainerHeight: 3000}, 50},
		{"bottom at viewport bottom", Layout{ViewportHeight: 800, ContainerTop: -2200, ContainerHeight: 3000}, 100},
		{"bottom above viewport bottom", Layout{ViewportHeight: 800, ContainerTop: -2900, ContainerHeight: 3000}, 100},
		{"short container in view", Layout{ViewportHeight: 800, ContainerTop: 100, ContainerHeight: 300}, 100},
		{"short container below fold", Layout{ViewportHeight: 800, ContainerTop: 900, ContainerHeight: 300}, 0},
		{"exactly viewport height", Layout{ViewportHeight: 800, ContainerTop: 0, ContainerHeight: 800}, 100},
		{"zero sized", Layout{}, 100},
	}
	for _, tt := range tests {
		got := Progress(tt.layout)
		if math.IsNaN(got) {
			t.Fatalf("%s: Progress returned NaN", tt.name)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Progress = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProgressBounds(t *testing.T) {
	for top := -5000.0; top <= 5000; top += 137 {
		for _, h := range []float64{0, 100, 800, 801, 4000} {
			p := Progress(Layout{ViewportHeight: 800, ContainerTop: top, ContainerHeight: h})
			if math.IsNaN(p) || p < 0 || p > 100 {
				t.Fatalf("Progress(top=%v, height=%v) = %v out of range", top, h, p)
			}
		}
	}
}

func TestActiveHeading(t *testing.T) {
	tests := []struct {
		name     string
		headings map[string]Rect
		want     string
	}{
		{
			name: "none reached",
			headings: map[string]Rect{
				"heading-0": {Top: 900, Bottom: 940},
				"heading-1": {Top: 1500, Bottom: 1540},
				"heading-2": {Top: 2200, Bottom: 2240},
			},
			want: "",
		},
		{
			name: "single in band",
			headings: map[string]Rect{
				"heading-0": {Top: -400, Bottom: -360},
				"heading-1": {Top: 300, Bottom: 340},
				"heading-2": {Top: 1200, Bottom: 1240},
			},
			want: "heading-1",
		},
		{
			name: "earliest of several in band",
			headings: map[string]Rect{
				"heading-0": {Top: 100, Bottom: 140},
				"heading-1": {Top: 300, Bottom: 340},
				"heading-2": {Top: 500, Bottom: 540},
			},
			want: "heading-1",
		},
		{
			name: "between headings keeps last passed",
			headings: map[string]Rect{
				"heading-0": {Top: -900, Bottom: -860},
				"heading-1": {Top: -200, Bottom: -160},
				"heading-2": {Top: 900, Bottom: 940},
			},
			want: "heading-1",
		},
		{
			name: "all passed",
			headings: map[string]Rect{
				"heading-0": {Top: -2000, Bottom: -1960},
				"heading-1": {Top: -1200, Bottom: -1160},
				"heading-2": {Top: -300, Bottom: -260},
			},
			want: "heading-2",
		},
	}
	for _, tt := range tests {
		got := ActiveHeading(testHeadings, Layout{ViewportHeight: 1000, Headings: tt.headings})
		if got != tt.want {
			t.Errorf("%s: ActiveHeading = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTrackerCoalescesToOneFrame(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)

	var mu sync.Mutex
	var seen []State
	tr.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	for top := 0.0; top >= -1100; top -= 100 {
		tr.Scroll(Layout{ViewportHeight: 800, ContainerTop: top, ContainerHeight: 3000})
	}
	if sched.requests != 1 {
		t.Fatalf("requested %d frames, want 1", sched.requests)
	}
	sched.flush()

	if got := tr.State().Progress; got != 50 {
		t.Errorf("Progress = %v, want 50 (latest layout wins)", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Errorf("listener called %d times, want 1", len(seen))
	}
}

func TestTrackerResizeSchedulesAgain(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)

	tr.Scroll(Layout{ViewportHeight: 800, ContainerTop: 0, ContainerHeight: 3000})
	sched.flush()
	tr.Resize(Layout{ViewportHeight: 1000, ContainerTop: -2000, ContainerHeight: 3000})
	sched.flush()

	if sched.requests != 2 {
		t.Errorf("requested %d frames, want 2", sched.requests)
	}
	if got := tr.State().Progress; got != 100 {
		t.Errorf("Progress = %v, want 100", got)
	}
}

func TestTrackerSetHeadingsResets(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)

	tr.Scroll(Layout{
		ViewportHeight:  1000,
		ContainerTop:    -500,
		ContainerHeight: 3000,
		Headings:        map[string]Rect{"heading-0": {Top: 300, Bottom: 340}},
	})
	sched.flush()
	if tr.State().ActiveHeadingID != "heading-0" {
		t.Fatalf("ActiveHeadingID = %q, want heading-0", tr.State().ActiveHeadingID)
	}

	tr.Scroll(Layout{ViewportHeight: 1000, ContainerTop: -900, ContainerHeight: 3000})
	tr.SetHeadings(markdown.Parse("# Other post").Headings)
	if sched.pending() != 0 {
		t.Errorf("pending frame survived SetHeadings")
	}
	if s := tr.State(); s != (State{}) {
		t.Errorf("State after SetHeadings = %+v, want zero", s)
	}
}

func TestTrackerSetHeadingsNotifiesReset(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)
	var got []State
	tr.Subscribe(func(s State) { got = append(got, s) })

	tr.Scroll(Layout{
		ViewportHeight:  1000,
		ContainerTop:    -500,
		ContainerHeight: 3000,
		Headings:        map[string]Rect{"heading-0": {Top: 300, Bottom: 340}},
	})
	sched.flush()
	if len(got) != 1 {
		t.Fatalf("listener calls after scroll = %d, want 1", len(got))
	}

	tr.SetHeadings(markdown.Parse("# Other post").Headings)
	if len(got) != 2 || got[1] != (State{}) {
		t.Fatalf("listener states = %+v, want a trailing zero state", got)
	}

	// Already at the zero state: nothing new to report.
	tr.SetHeadings(testHeadings)
	if len(got) != 2 {
		t.Errorf("listener calls = %d, want 2", len(got))
	}
}

func TestTrackerUnchangedStateSkipsListeners(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)
	calls := 0
	tr.Subscribe(func(State) { calls++ })

	l := Layout{ViewportHeight: 800, ContainerTop: -300, ContainerHeight: 3000}
	tr.Scroll(l)
	sched.flush()
	tr.Scroll(l)
	sched.flush()

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestTrackerUnsubscribeAndClose(t *testing.T) {
	sched := newManualScheduler()
	tr := NewTracker(sched, testHeadings)
	calls := 0
	unsubscribe := tr.Subscribe(func(State) { calls++ })
	unsubscribe()

	tr.Scroll(Layout{ViewportHeight: 800, ContainerTop: -300, ContainerHeight: 3000})
	sched.flush()
	if calls != 0 {
		t.Errorf("unsubscribed listener called %d times", calls)
	}

	tr.Close()
	tr.Scroll(Layout{ViewportHeight: 800, ContainerTop: -600, ContainerHeight: 3000})
	if sched.pending() != 0 {
		t.Errorf("closed tracker requested a frame")
	}
}

func TestTrackerWithTickerScheduler(t *testing.T) {
	sched := NewTickerScheduler(5 * time.Millisecond)
	defer sched.Stop()
	tr := NewTracker(sched, testHeadings)
	defer tr.Close()

	got := make(chan State, 1)
	tr.Subscribe(func(s State) {
		select {
		case got <- s:
		default:
		}
	})
	tr.Scroll(Layout{ViewportHeight: 800, ContainerTop: -1100, ContainerHeight: 3000})

	select {
	case s := <-got:
		if s.Progress != 50 {
			t.Errorf("Progress = %v, want 50", s.Progress)
		}
	case <-time.After(time.Second):
		t.Fatal("frame never fired")
	}
}
