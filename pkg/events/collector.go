package events

import (
	"slices"
	"sync"
)

// NewCollector records events and forwards them to next, which may be nil.
func NewCollector(next Handler) *Collector {
	return &Collector{next: next}
}

// Collector is safe for concurrent use by build steps.
type Collector struct {
	mu     sync.Mutex
	events []Event
	next   Handler
}

func (c *Collector) Handle(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	if c.next != nil {
		c.next.Handle(event)
	}
}

func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

// AtLevel returns the events at level or above.
func (c *Collector) AtLevel(level Level) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, 0)
	for _, event := range c.events {
		if event.Level >= level {
			out = append(out, event)
		}
	}
	return out
}

func (c *Collector) Count(level Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, event := range c.events {
		if event.Level == level {
			n++
		}
	}
	return n
}

func (c *Collector) MaxLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()

	max := Debug
	for _, event := range c.events {
		if event.Level > max {
			max = event.Level
		}
	}
	return max
}
