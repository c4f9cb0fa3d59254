// Package display holds the named slots a dashboard page renders and the
// Sink contract pollers write through.
package display

import "errors"

// ErrUnknownSlot is returned when a write targets a slot the page does not
// declare.
var ErrUnknownSlot = errors.New("unknown display slot")

// Kind is how a slot's value is rendered.
type Kind int

const (
	// KindText slots show their value as text content.
	KindText Kind = iota
	// KindImage slots use their value as an image source reference.
	KindImage
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Slot is a named place on the page.
type Slot struct {
	ID   string
	Kind Kind
}

// Text and Image declare a slot of that kind.
func Text(id string) Slot  { return Slot{ID: id, Kind: KindText} }
func Image(id string) Slot { return Slot{ID: id, Kind: KindImage} }

// Sink receives rendered slot values.
type Sink interface {
	Write(slot string, value string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(slot, value string) error

// Write calls f.
func (f SinkFunc) Write(slot, value string) error { return f(slot, value) }
