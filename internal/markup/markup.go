package markup

import (
	"fmt"
	"io"
	"strings"
)

// Markup is the mutable ordered event sequence representing one parsed
// template or fragment. It is exclusively owned by whoever builds or
// processes it and is not safe for concurrent use; publish a Freeze result
// instead of sharing a Markup.
type Markup struct {
	mode   TemplateMode
	events []Event
}

// New creates an empty mutable container for the given mode.
func New(mode TemplateMode) *Markup {
	return &Markup{mode: mode}
}

// Of creates a container holding the given events, in order.
func Of(mode TemplateMode, events ...Event) *Markup {
	m := New(mode)
	m.Append(events...)
	return m
}

// Mode returns the template mode the markup was parsed under.
func (m *Markup) Mode() TemplateMode { return m.mode }

// Size returns the number of events.
func (m *Markup) Size() int { return len(m.events) }

// Get returns the event at index i.
func (m *Markup) Get(i int) Event {
	m.check(i, i+1)
	return m.events[i]
}

// Append adds events at the end.
func (m *Markup) Append(events ...Event) {
	m.events = append(m.events, events...)
}

// Insert places events before index i, shifting the rest right. i may equal
// Size, which appends.
func (m *Markup) Insert(i int, events ...Event) {
	m.check(i, i)
	m.events = append(m.events[:i], append(append([]Event{}, events...), m.events[i:]...)...)
}

// Remove deletes the events in [i, j).
func (m *Markup) Remove(i, j int) {
	m.check(i, j)
	m.events = append(m.events[:i], m.events[j:]...)
}

// Replace substitutes the events in [i, j) with the given events.
func (m *Markup) Replace(i, j int, events ...Event) {
	m.check(i, j)
	m.events = append(m.events[:i], append(append([]Event{}, events...), m.events[j:]...)...)
}

// AppendMarkup adds every event of other, which must be of the same mode.
// Events are moved by reference; other must not be used afterwards.
func (m *Markup) AppendMarkup(other *Markup) {
	m.events = append(m.events, other.events...)
}

// Clone returns a deep copy: every event is cloned, so the result shares no
// mutable sub-structure with the receiver.
func (m *Markup) Clone() *Markup {
	clone := &Markup{mode: m.mode, events: make([]Event, len(m.events))}
	for i, ev := range m.events {
		clone.events[i] = ev.Clone()
	}
	return clone
}

// WriteTo serializes the sequence by invoking each event's own writer.
func (m *Markup) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, ev := range m.events {
		n, err := ev.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Render returns the serialized textual form of the sequence.
func (m *Markup) Render() string {
	var sb strings.Builder
	m.WriteTo(&sb)
	return sb.String()
}

func (m *Markup) check(i, j int) {
	if i < 0 || j < i || j > len(m.events) {
		panic(fmt.Sprintf("markup: range [%d,%d) out of bounds for %d events", i, j, len(m.events)))
	}
}
