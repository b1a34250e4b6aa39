package markup

import (
	"io"
	"strings"
)

// Immutable is the frozen capability variant of a Markup: read access only.
// It is what the template cache stores, and it is safe for any number of
// concurrent readers because no code path can reach its backing storage
// through a mutable handle.
//
// Freeze deep-copies its input and permanently marks every copied event (and
// every attribute collection) frozen, so events returned by Get reject all
// mutating accessors with an immutability violation instead of needing a
// per-kind wrapper hierarchy. Fork is the only way to obtain mutable markup
// again, and it is a full deep copy.
type Immutable struct {
	markup *Markup
}

// Freeze returns the immutable form of m. m itself is not touched and stays
// usable; the frozen copy is fully independent of it.
func Freeze(m *Markup) *Immutable {
	frozen := m.Clone()
	for _, ev := range frozen.events {
		freezeEvent(ev)
	}
	return &Immutable{markup: frozen}
}

// Mode returns the template mode the markup was parsed under.
func (im *Immutable) Mode() TemplateMode { return im.markup.mode }

// Size returns the number of events.
func (im *Immutable) Size() int { return im.markup.Size() }

// Get returns the event at index i. The returned event is permanently
// frozen: every mutating accessor on it fails with an immutability
// violation, and cloning it yields an independent mutable copy that cannot
// affect the container.
func (im *Immutable) Get(i int) Event { return im.markup.Get(i) }

// Fork returns a new, independently owned mutable deep copy. This is the
// only way from immutable markup back to mutable markup.
func (im *Immutable) Fork() *Markup { return im.markup.Clone() }

// WriteTo serializes the sequence. The output is byte-identical to rendering
// the Markup the container was frozen from.
func (im *Immutable) WriteTo(w io.Writer) (int64, error) { return im.markup.WriteTo(w) }

// Render returns the serialized textual form of the sequence.
func (im *Immutable) Render() string {
	var sb strings.Builder
	im.WriteTo(&sb)
	return sb.String()
}

// freezeEvent marks one event read-only. Tag events also freeze their
// attribute collections.
func freezeEvent(ev Event) {
	switch t := ev.(type) {
	case *OpenTag:
		t.freeze()
	case *StandaloneTag:
		t.freeze()
	case *Text:
		t.base.freeze()
	case *CDATASection:
		t.base.freeze()
	case *Comment:
		t.base.freeze()
	case *DocType:
		t.base.freeze()
	case *XMLDeclaration:
		t.base.freeze()
	case *ProcessingInstruction:
		t.base.freeze()
	case *CloseTag:
		t.base.freeze()
	}
}
