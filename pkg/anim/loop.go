// Package anim provides host-driven per-frame ticks.
//
// A [Loop] owns named [Channel]s. Each channel runs at most one ticker at a
// time: starting a new ticker on a busy channel cancels the previous one.
// The loop never spawns goroutines; the host calls [Loop.Advance] once per
// frame (from a render loop, a terminal tick or a time.Ticker) and every
// active ticker runs to completion inside that call.
package anim

import (
	"slices"
	"time"

	"github.com/matzehuels/flowcore/pkg/observability"
)

// Ticker is a per-frame callback. Returning false ends the ticker.
type Ticker func(now time.Time) bool

// Loop schedules frame callbacks across channels.
// It is not safe for concurrent use.
type Loop struct {
	channels map[string]*Channel
	now      time.Time
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{channels: make(map[string]*Channel)}
}

// Channel returns the named channel, creating it on first use.
func (l *Loop) Channel(name string) *Channel {
	if c, ok := l.channels[name]; ok {
		return c
	}
	c := &Channel{name: name, loop: l}
	l.channels[name] = c
	return c
}

// Now returns the timestamp of the latest Advance call.
func (l *Loop) Now() time.Time { return l.now }

// Advance runs one frame of every active ticker, in channel name order,
// and returns how many tickers remain active afterwards.
func (l *Loop) Advance(now time.Time) int {
	l.now = now
	names := make([]string, 0, len(l.channels))
	for name, c := range l.channels {
		if c.tick != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		l.channels[name].run(now)
	}
	return l.Active()
}

// Active returns the number of channels with a running ticker.
func (l *Loop) Active() int {
	n := 0
	for _, c := range l.channels {
		if c.tick != nil {
			n++
		}
	}
	return n
}

// StopAll cancels every ticker.
func (l *Loop) StopAll() {
	for _, c := range l.channels {
		c.Stop()
	}
}

// Channel is a named slot holding at most one ticker.
type Channel struct {
	name   string
	loop   *Loop
	tick   Ticker
	gen    uint64
	frames int
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Start installs t, cancelling any ticker already running on the channel.
// The first frame runs on the next Advance.
func (c *Channel) Start(t Ticker) {
	c.Stop()
	c.gen++
	c.tick = t
	c.frames = 0
	observability.Frame().OnFrameStart(c.name)
}

// Stop cancels the running ticker, if any.
func (c *Channel) Stop() {
	if c.tick == nil {
		return
	}
	c.tick = nil
	observability.Frame().OnFrameStop(c.name, c.frames)
}

// Active reports whether a ticker is running.
func (c *Channel) Active() bool { return c.tick != nil }

// Frames returns the number of frames the current ticker has run.
func (c *Channel) Frames() int { return c.frames }

func (c *Channel) run(now time.Time) {
	gen, t := c.gen, c.tick
	if t == nil {
		return
	}
	c.frames++
	if !t(now) && c.gen == gen {
		c.Stop()
	}
}
