// Package runlog captures the log of a single pipeline run so it can be shown
// to the user who submitted it.
package runlog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is one captured log record.
type Entry struct {
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// Line formats the entry for the progress panel: "[15:04:05] WARN [mapper] msg k=v".
func (e Entry) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ", e.Time.Format("15:04:05"), e.Level)
	if e.Component != "" {
		fmt.Fprintf(&b, "[%s] ", e.Component)
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

// Subscriber receives entries as they are recorded.
type Subscriber func(Entry)

type store struct {
	mu      sync.Mutex
	entries []Entry
	subs    []Subscriber
}

// Collector is an slog.Handler that records every entry of one run.
// Handlers derived through WithAttrs and WithGroup share the same store.
type Collector struct {
	store  *store
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewCollector returns a collector recording records at or above level.
func NewCollector(level slog.Leveler) *Collector {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Collector{store: &store{}, level: level}
}

// Subscribe registers fn for entries recorded from now on.
func (c *Collector) Subscribe(fn Subscriber) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.subs = append(c.store.subs, fn)
}

func (c *Collector) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

func (c *Collector) Handle(_ context.Context, r slog.Record) error {
	e := Entry{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
		Attrs:   make(map[string]any),
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, a := range c.attrs {
		c.put(&e, c.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		c.put(&e, c.prefix, a)
		return true
	})
	if len(e.Attrs) == 0 {
		e.Attrs = nil
	}

	c.store.mu.Lock()
	c.store.entries = append(c.store.entries, e)
	subs := append([]Subscriber(nil), c.store.subs...)
	c.store.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
	return nil
}

func (c *Collector) put(e *Entry, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix + a.Key + "."
		if a.Key == "" {
			p = prefix
		}
		for _, ga := range a.Value.Group() {
			c.put(e, p, ga)
		}
		return
	}
	if prefix == "" && a.Key == "component" {
		e.Component = a.Value.String()
		return
	}
	e.Attrs[prefix+a.Key] = a.Value.Any()
}

func (c *Collector) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}
	next := *c
	next.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	return &next
}

func (c *Collector) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	next := *c
	next.prefix = c.prefix + name + "."
	return &next
}

// Entries returns a copy of everything recorded so far.
func (c *Collector) Entries() []Entry {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]Entry, len(c.store.entries))
	copy(out, c.store.entries)
	return out
}

// Lines formats all entries with Entry.Line.
func (c *Collector) Lines() []string {
	entries := c.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines
}

// Filter returns the entries at exactly level.
func (c *Collector) Filter(level slog.Level) []Entry {
	var out []Entry
	for _, e := range c.Entries() {
		if e.Level == level.String() {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any message contains substr.
func (c *Collector) Contains(substr string) bool {
	for _, e := range c.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
