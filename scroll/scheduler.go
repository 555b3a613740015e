package scroll

import (
	"sync"
	"time"
)

// FrameScheduler runs callbacks on the next frame. RequestFrame returns a
// cancel function; calling it after the frame ran is a no-op.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// FrameInterval is one frame at 60Hz.
const FrameInterval = time.Second / 60

// TickerScheduler fires queued callbacks on a fixed frame clock.
type TickerScheduler struct {
	mu     sync.Mutex
	next   uint64
	queue  map[uint64]func()
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// NewTickerScheduler starts a frame clock with the given interval. Call Stop
// to release it.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	s := &TickerScheduler{
		queue:  make(map[uint64]func()),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *TickerScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.mu.Lock()
			queued := s.queue
			s.queue = make(map[uint64]func())
			s.mu.Unlock()
			for _, fn := range queued {
				fn()
			}
		case <-s.done:
			s.ticker.Stop()
			return
		}
	}
}

// RequestFrame queues fn for the next tick.
func (s *TickerScheduler) RequestFrame(fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.queue[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.queue, id)
		s.mu.Unlock()
	}
}

// Stop halts the frame clock. Queued callbacks are dropped.
func (s *TickerScheduler) Stop() {
	s.once.Do(func() { close(s.done) })
}
