package watch

import (
	"context"
	"sync"
	"time"
)

// DebounceConfig tunes change coalescing.
type DebounceConfig struct {
	// QuietWindow is how long the tree must stay silent before a rebuild
	// fires.
	QuietWindow time.Duration

	// MaxDelay bounds how long a continuous stream of changes can postpone
	// the rebuild.
	MaxDelay time.Duration
}

func (c DebounceConfig) withDefaults() DebounceConfig {
	if c.QuietWindow <= 0 {
		c.QuietWindow = 400 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	return c
}

// Debouncer coalesces bursts of change notifications into single fire
// callbacks: a quiet window since the last change, capped by a max delay
// since the first change of the burst.
type Debouncer struct {
	cfg  DebounceConfig
	fire func()

	mu      sync.Mutex
	pending bool
	firstAt time.Time
	lastAt  time.Time
}

// NewDebouncer creates a debouncer calling fire for each coalesced burst.
func NewDebouncer(cfg DebounceConfig, fire func()) *Debouncer {
	return &Debouncer{cfg: cfg.withDefaults(), fire: fire}
}

// Notify records one change. Safe for concurrent use.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if !d.pending {
		d.pending = true
		d.firstAt = now
	}
	d.lastAt = now
}

// Run evaluates pending bursts until the context is canceled. The tick
// interval bounds fire latency well below the quiet window.
func (d *Debouncer) Run(ctx context.Context) {
	interval := d.cfg.QuietWindow / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.takeDue() {
				d.fire()
			}
		}
	}
}

// takeDue reports whether a pending burst is due and clears it if so.
func (d *Debouncer) takeDue() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		return false
	}
	now := time.Now()
	quiet := now.Sub(d.lastAt) >= d.cfg.QuietWindow
	overdue := now.Sub(d.firstAt) >= d.cfg.MaxDelay
	if !quiet && !overdue {
		return false
	}
	d.pending = false
	return true
}
