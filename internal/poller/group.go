package poller

import (
	"context"
	"fmt"
)

// Group starts and stops several pollers together.
type Group struct {
	pollers []*Poller
}

// NewGroup creates a group over pollers.
func NewGroup(pollers ...*Poller) *Group {
	return &Group{pollers: pollers}
}

// Start starts every poller, stopping the ones already started if one fails.
func (g *Group) Start(ctx context.Context) error {
	for i, p := range g.pollers {
		if err := p.Start(ctx); err != nil {
			for _, started := range g.pollers[:i] {
				started.Stop()
			}
			return fmt.Errorf("start %s poller: %w", p.Name(), err)
		}
	}
	return nil
}

// Stop stops every poller and waits for their cycles.
func (g *Group) Stop() {
	for _, p := range g.pollers {
		p.Stop()
	}
}

// Pollers returns the pollers in the group.
func (g *Group) Pollers() []*Poller {
	return g.pollers
}

// Statuses returns every poller's status, in start order.
func (g *Group) Statuses() []Status {
	out := make([]Status, len(g.pollers))
	for i, p := range g.pollers {
		out[i] = p.Status()
	}
	return out
}
