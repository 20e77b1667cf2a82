package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
)

// scriptedRandom returns queued values, then falls back to zero
type scriptedRandom struct {
	mu   sync.Mutex
	vals []int
}

func (r *scriptedRandom) push(vals ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals = append(r.vals, vals...)
}

func (r *scriptedRandom) Intn(n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.vals) == 0 {
		return 0, nil
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v % n, nil
}

type brokenRandom struct{}

func (brokenRandom) Intn(int) (int, error) { return 0, errors.New("entropy exhausted") }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// textRenderer writes the target time as the image body
type textRenderer struct{}

func (textRenderer) Render(t core.ClockTime, _ core.RenderParams) (ports.Image, error) {
	return ports.Image{Data: []byte(t.String()), ContentType: "text/plain"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.VerdictEvent
	err    error
}

func (p *recordingPublisher) PublishVerdict(_ context.Context, ev ports.VerdictEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []ports.VerdictEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.VerdictEvent(nil), p.events...)
}
