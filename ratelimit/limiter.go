package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Limiter is a fixed-window request counter keyed by caller. It is an
// explicitly constructed component with a Start/Stop lifecycle, process-local
// and best-effort: it resets on restart and is not shared between instances.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	windows map[string]*window

	stopOnce sync.Once
	stop     chan struct{}
}

type window struct {
	start time.Time
	count int
}

func New(max int, windowSize time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  windowSize,
		windows: make(map[string]*window),
		stop:    make(chan struct{}),
	}
}

// Start launches the janitor that drops windows past their reset time.
func (l *Limiter) Start() {
	go l.cleanup()
}

// Stop terminates the janitor. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow records a hit for key and reports whether it fits in the current
// window, along with when the window resets.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
	}
	reset := w.start.Add(l.window)

	if w.count >= l.max {
		return false, reset
	}
	w.count++
	return true, reset
}

// Middleware enforces the limit per client IP and answers 429 when exceeded.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, reset := l.Allow(c.IP())
		if !allowed {
			c.Set("Retry-After", time.Until(reset).Round(time.Second).String())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later",
			})
		}
		return c.Next()
	}
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			l.mu.Lock()
			for key, w := range l.windows {
				if now.Sub(w.start) >= l.window {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
