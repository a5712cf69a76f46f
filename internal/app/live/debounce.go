package live

import (
	"sync"
	"time"
)

// Debouncer delivers the latest pushed value once no new value has arrived
// for the delay. Earlier values are dropped.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func(string)
	timer   *time.Timer
	pending string
	has     bool
	stopped bool
}

// NewDebouncer calls fire on its own goroutine with the settled value.
func NewDebouncer(delay time.Duration, fire func(string)) *Debouncer {
	return &Debouncer{delay: delay, fire: fire}
}

// Push records v and restarts the quiet period.
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending, d.has = v, true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.deliver)
}

func (d *Debouncer) deliver() {
	d.mu.Lock()
	if !d.has || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.pending, d.has = "", false
	d.mu.Unlock()
	d.fire(v)
}

// Flush delivers any pending value now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	if !d.has || d.stopped {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.pending, d.has = "", false
	d.mu.Unlock()
	d.fire(v)
}

// Stop cancels the timer and drops anything pending.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.has = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
