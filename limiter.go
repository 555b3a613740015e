package localtable

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter rate-limits login attempts per IP address over a sliding window.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewLoginLimiter creates a LoginLimiter that allows max attempts per window.
// Call Stop to end its cleanup goroutine.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	l := &LoginLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		done:     make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *LoginLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-l.done:
			return
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip, hits := range l.attempts {
			kept := hits[:0]
			for _, t := range hits {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			if len(kept) == 0 {
				delete(l.attempts, ip)
			} else {
				l.attempts[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine.
func (l *LoginLimiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Allow checks if the IP has not exceeded the rate limit and records the attempt.
func (l *LoginLimiter) Allow(ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

// Check returns true if the IP has not exceeded the rate limit.
// It does not record an attempt; call Record separately on failure.
func (l *LoginLimiter) Check(ip string) bool {
	cutoff := time.Now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.attempts[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts[ip] = kept
	return len(kept) < l.max
}

// Record registers a failed login attempt for the given IP.
func (l *LoginLimiter) Record(ip string) {
	l.mu.Lock()
	l.attempts[ip] = append(l.attempts[ip], time.Now())
	l.mu.Unlock()
}

// FormLimiter throttles public form submissions with a token bucket per IP.
type FormLimiter struct {
	mu      sync.Mutex
	buckets map[string]*formBucket
	every   rate.Limit
	burst   int
	idle    time.Duration
	done    chan struct{}
	once    sync.Once
}

type formBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewFormLimiter allows burst submissions per IP, refilled evenly over window.
func NewFormLimiter(burst int, window time.Duration) *FormLimiter {
	if burst < 1 {
		burst = 1
	}
	f := &FormLimiter{
		buckets: make(map[string]*formBucket),
		every:   rate.Every(window / time.Duration(burst)),
		burst:   burst,
		idle:    window,
		done:    make(chan struct{}),
	}
	go f.cleanup()
	return f
}

// Allow reports whether ip may submit now and consumes a token if so.
func (f *FormLimiter) Allow(ip string) bool {
	f.mu.Lock()
	b, ok := f.buckets[ip]
	if !ok {
		b = &formBucket{lim: rate.NewLimiter(f.every, f.burst)}
		f.buckets[ip] = b
	}
	b.seen = time.Now()
	f.mu.Unlock()
	return b.lim.Allow()
}

func (f *FormLimiter) cleanup() {
	ticker := time.NewTicker(f.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-f.done:
			return
		}
		cutoff := time.Now().Add(-f.idle)
		f.mu.Lock()
		for ip, b := range f.buckets {
			if b.seen.Before(cutoff) {
				delete(f.buckets, ip)
			}
		}
		f.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine.
func (f *FormLimiter) Stop() {
	f.once.Do(func() { close(f.done) })
}
