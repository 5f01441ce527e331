// Package autosave implements the debounce policy for persisting partial
// edits: one cancelable delayed save per tracked field, re-armed on every new
// edit, flushing only the latest value.
package autosave

import (
	"sync"
	"time"

	"github.com/telcwrite/telcwrite/pkg/metrics"
)

// SaveFunc persists one field. It is called outside the coordinator lock.
type SaveFunc func(field, value string) error

// ErrorFunc is told about a failed save. The coordinator keeps running and
// keeps accepting edits; the caller decides how to surface the failure.
type ErrorFunc func(field string, err error)

// Coordinator debounces saves per field. Fields are independent: editing one
// never delays or drops the pending save of another.
type Coordinator struct {
	save    SaveFunc
	onError ErrorFunc
	delay   time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]string
	stopped bool
}

func New(delay time.Duration, save SaveFunc, onError ErrorFunc) *Coordinator {
	if onError == nil {
		onError = func(string, error) {}
	}
	return &Coordinator{
		save:    save,
		onError: onError,
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]string),
	}
}

// Edit records a new value for the field and (re)starts its quiet-period
// timer with the default delay.
func (c *Coordinator) Edit(field, value string) {
	c.EditAfter(field, value, c.delay)
}

// EditAfter is Edit with an explicit delay, for callers whose commit policy
// varies by trigger (e.g. short on blur, long on continuous input).
func (c *Coordinator) EditAfter(field, value string, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending[field] = value
	if t, ok := c.timers[field]; ok {
		t.Stop()
	}
	c.timers[field] = time.AfterFunc(delay, func() { c.fire(field) })
}

// Flush commits the pending value for the field immediately, canceling its
// timer. No-op when nothing is pending.
func (c *Coordinator) Flush(field string) {
	c.mu.Lock()
	if t, ok := c.timers[field]; ok {
		t.Stop()
		delete(c.timers, field)
	}
	c.mu.Unlock()
	c.fire(field)
}

// FlushAll commits every pending field.
func (c *Coordinator) FlushAll() {
	c.mu.Lock()
	fields := make([]string, 0, len(c.pending))
	for f := range c.pending {
		fields = append(fields, f)
	}
	for f, t := range c.timers {
		t.Stop()
		delete(c.timers, f)
	}
	c.mu.Unlock()
	for _, f := range fields {
		c.fire(f)
	}
}

// Stop cancels all pending saves without committing them.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for f, t := range c.timers {
		t.Stop()
		delete(c.timers, f)
	}
	c.pending = make(map[string]string)
}

// fire persists the field's latest pending value, if any. The value is taken
// out before saving so an edit arriving during the save re-arms cleanly.
func (c *Coordinator) fire(field string) {
	c.mu.Lock()
	value, ok := c.pending[field]
	if ok {
		delete(c.pending, field)
		delete(c.timers, field)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	if err := c.save(field, value); err != nil {
		metrics.AutosaveFailures.WithLabelValues(field).Inc()
		c.onError(field, err)
	}
}
