package markup

import (
	"io"
	"strings"

	"github.com/loomkit/loom/internal/errors"
)

// EventKind identifies one of the nine structural event kinds.
type EventKind int

const (
	KindText EventKind = iota
	KindCDATA
	KindComment
	KindDocType
	KindXMLDeclaration
	KindProcessingInstruction
	KindOpenTag
	KindCloseTag
	KindStandaloneTag
)

// String returns the kind name used in diagnostics.
func (k EventKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCDATA:
		return "cdata"
	case KindComment:
		return "comment"
	case KindDocType:
		return "doctype"
	case KindXMLDeclaration:
		return "xml declaration"
	case KindProcessingInstruction:
		return "processing instruction"
	case KindOpenTag:
		return "open tag"
	case KindCloseTag:
		return "close tag"
	case KindStandaloneTag:
		return "standalone tag"
	default:
		return "unknown"
	}
}

// Location is the source position of an event, used only for diagnostics.
// The zero value means "no location known".
type Location struct {
	Template string
	Line     int
	Col      int
}

// IsZero reports whether no location information is present.
func (l Location) IsZero() bool {
	return l.Template == "" && l.Line == 0 && l.Col == 0
}

// Event is one structural unit of a parsed template. The set of
// implementations is closed: *Text, *CDATASection, *Comment, *DocType,
// *XMLDeclaration, *ProcessingInstruction, *OpenTag, *CloseTag and
// *StandaloneTag, all in this package. Dispatch over events is a type switch
// and is exhaustive by construction.
//
// Events are value-like: Clone always produces a fully independent, mutable
// copy with no shared sub-structure. Mutating accessors on the concrete types
// return an immutability violation when the event was obtained through an
// Immutable container.
type Event interface {
	// Kind identifies the concrete event type without a type switch.
	Kind() EventKind
	// Location is the event's source position, zero when synthetic.
	Location() Location
	// Clone returns an independent mutable deep copy of the event.
	Clone() Event
	// WriteTo writes the exact textual form of the event.
	WriteTo(w io.Writer) (int64, error)

	sealed()
}

// base carries what every event has: an optional source location and the
// frozen capability flag set when the owning container is frozen.
type base struct {
	loc    Location
	frozen bool
}

func (b *base) Location() Location { return b.loc }

func (b *base) sealed() {}

// guard rejects the named mutating capability on frozen events.
func (b *base) guard(capability string) error {
	if b.frozen {
		return errors.Immutable(capability)
	}
	return nil
}

// freeze marks the event read-only. Only Freeze walks here, right after deep
// copying, so no mutable alias to a frozen event can exist.
func (b *base) freeze() { b.frozen = true }

// Frozen reports whether the event rejects mutation because it belongs to an
// Immutable container.
func (b *base) Frozen() bool { return b.frozen }

// SetLocation records the source position of the event. Valid on mutable
// events only.
func (b *base) SetLocation(loc Location) error {
	if err := b.guard("SetLocation"); err != nil {
		return err
	}
	b.loc = loc
	return nil
}

// RenderEvent returns the textual form of a single event.
func RenderEvent(ev Event) string {
	var sb strings.Builder
	ev.WriteTo(&sb)
	return sb.String()
}

func writeString(w io.Writer, parts ...string) (int64, error) {
	var total int64
	for _, part := range parts {
		n, err := io.WriteString(w, part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
