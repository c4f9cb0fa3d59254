package display

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Value is the current content of a slot.
type Value struct {
	Slot      Slot
	Content   string
	UpdatedAt time.Time
	Set       bool
}

// Change is delivered to subscribers after every successful write.
type Change struct {
	Slot    Slot
	Content string
	At      time.Time
}

// Board is an in-memory Sink for a fixed set of slots. Individual writes are
// serialized; concurrent writers to the same slot race and the last one wins.
type Board struct {
	mu     sync.RWMutex
	values map[string]*Value
	order  []string
	subs   map[int]chan Change
	nextID int
	now    func() time.Time
}

// NewBoard creates a board declaring the given slots. Duplicate ids keep the
// first declaration.
func NewBoard(slots ...Slot) *Board {
	b := &Board{
		values: make(map[string]*Value, len(slots)),
		subs:   make(map[int]chan Change),
		now:    time.Now,
	}
	for _, s := range slots {
		if _, exists := b.values[s.ID]; exists {
			continue
		}
		b.values[s.ID] = &Value{Slot: s}
		b.order = append(b.order, s.ID)
	}
	return b
}

// Write replaces a slot's content.
func (b *Board) Write(slot, value string) error {
	b.mu.Lock()
	v, ok := b.values[slot]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	now := b.now()
	v.Content = value
	v.UpdatedAt = now
	v.Set = true

	change := Change{Slot: v.Slot, Content: value, At: now}
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	b.mu.Unlock()
	return nil
}

// Get returns a copy of the slot's value.
func (b *Board) Get(slot string) (Value, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[slot]
	if !ok {
		return Value{}, false
	}
	return *v, true
}

// Content returns the slot's text, or "" when it is unknown or unset.
func (b *Board) Content(slot string) string {
	v, _ := b.Get(slot)
	return v.Content
}

// Has reports whether the board declares slot.
func (b *Board) Has(slot string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.values[slot]
	return ok
}

// Slots returns the declared slots in declaration order.
func (b *Board) Slots() []Slot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Slot, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.values[id].Slot)
	}
	return out
}

// Snapshot copies every slot value, keyed by slot id.
func (b *Board) Snapshot() map[string]Value {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]Value, len(b.values))
	for id, v := range b.values {
		out[id] = *v
	}
	return out
}

// LastUpdate returns the most recent write time across all slots.
func (b *Board) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var last time.Time
	for _, v := range b.values {
		if v.UpdatedAt.After(last) {
			last = v.UpdatedAt
		}
	}
	return last
}

// Subscribe returns a channel of changes and a function that closes it.
// Slow subscribers miss changes rather than block writers.
func (b *Board) Subscribe(buffer int) (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Change, buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// SlotIDs returns the declared ids sorted alphabetically.
func (b *Board) SlotIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.order))
	ids = append(ids, b.order...)
	sort.Strings(ids)
	return ids
}
