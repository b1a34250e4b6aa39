package dialect

import "github.com/loomkit/loom/internal/markup"

// Dialect is a named bundle of processors contributed to the engine at
// configuration time.
type Dialect interface {
	// Name identifies the dialect in diagnostics.
	Name() string
	// Modes lists the template modes the dialect applies to.
	Modes() []markup.TemplateMode
	// Processors returns the dialect's processors for a mode, in declaration
	// order. Declaration order is the documented tie-break for equal
	// precedence within one dialect.
	Processors(mode markup.TemplateMode) []Processor
}

// PostProcessorDialect is implemented by dialects that also contribute
// post-processors: processors run in a second pass over the final event
// sequence, after the main pass and before serialization. Their presence is
// what makes unescaped-content expansion parse injected text into events at
// all.
type PostProcessorDialect interface {
	Dialect
	PostProcessors(mode markup.TemplateMode) []Processor
}

// Processor is one unit of rewriting logic. Process inspects the current
// event and declares structural effects on the handler; it must not retain
// references to the event or to container internals beyond the call.
type Processor interface {
	// Match describes which events the processor applies to.
	Match() Match
	// Precedence orders processors on the same event; lower runs first.
	Precedence() int
	// Process runs the processor against one event.
	Process(ctx *Context, ev markup.Event, h *StructureHandler) error
}

// Match is a processor's applicability predicate: an exact element name, an
// exact attribute name, or any event of one kind. Name matches apply to the
// attribute-bearing tag events (open and standalone) and take priority over
// kind matches when both apply to an event.
type Match struct {
	Kind          markup.EventKind
	ElementName   string
	AttributeName string
	byName        bool
}

// MatchKind matches every event of the given kind.
func MatchKind(kind markup.EventKind) Match {
	return Match{Kind: kind}
}

// MatchElement matches open and standalone tags with exactly this element
// name (case-normalized per mode).
func MatchElement(name string) Match {
	return Match{ElementName: name, byName: true}
}

// MatchAttribute matches open and standalone tags carrying exactly this
// attribute name (case-normalized per mode).
func MatchAttribute(name string) Match {
	return Match{AttributeName: name, byName: true}
}

// ByName reports whether the match is an exact element or attribute match
// rather than a kind wildcard.
func (m Match) ByName() bool { return m.byName }

// Applies reports whether the match covers the given event under the mode's
// name normalization rules.
func (m Match) Applies(mode markup.TemplateMode, ev markup.Event) bool {
	switch {
	case m.ElementName != "":
		if ev.Kind() == markup.KindCloseTag {
			return false
		}
		name, ok := markup.TagName(ev)
		return ok && mode.NormalizeName(name) == mode.NormalizeName(m.ElementName)
	case m.AttributeName != "":
		attrs, ok := markup.TagAttributes(ev)
		return ok && attrs.Has(m.AttributeName)
	default:
		return ev.Kind() == m.Kind
	}
}
