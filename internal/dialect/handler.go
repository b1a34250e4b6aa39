package dialect

import (
	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/markup"
)

// effect families; at most one of these may win per event.
const (
	effectNone    = ""
	effectRemove  = "remove"
	effectReplace = "replace"
	effectBody    = "set body"
	effectIterate = "iterate body"
)

// StructureHandler accumulates the structural effects declared by the
// processor chain of one event. It is transient state: the engine resets it
// before each event and consumes it right after the chain finishes, applying
// the accumulated declaration atomically.
//
// Remove, replacement and body effects are mutually exclusive; declaring two
// different ones is a dialect bug, recorded as a conflicting-effect error
// that fails the run. Re-declaring within the same family is last-writer-
// wins. Sibling insertions compose with everything.
type StructureHandler struct {
	event markup.Event

	winner string

	removed       bool
	removeElement bool

	replacement        []markup.Event
	replaceProcessable bool

	bodyEvents      []markup.Event
	bodyProcessable bool

	iterVar    string
	iterValues []interface{}

	before []markup.Event
	after  []markup.Event

	err error
}

// NewStructureHandler creates a handler; the engine reuses one per pass via
// Reset.
func NewStructureHandler() *StructureHandler {
	return &StructureHandler{}
}

// Reset prepares the handler for the processor chain of ev, dropping all
// previously accumulated state.
func (h *StructureHandler) Reset(ev markup.Event) {
	*h = StructureHandler{event: ev}
}

// Event returns the event the handler is scoped to.
func (h *StructureHandler) Event() markup.Event { return h.event }

func (h *StructureHandler) declare(family string) bool {
	if h.err != nil {
		return false
	}
	if h.winner != effectNone && h.winner != family {
		h.err = errors.Conflicting(h.winner, family)
		return false
	}
	h.winner = family
	return true
}

// Remove declares that the current event is dropped from the output.
func (h *StructureHandler) Remove() {
	if h.declare(effectRemove) {
		h.removed = true
		h.removeElement = false
	}
}

// RemoveElement declares that the current open tag, its whole body and its
// matching close tag are dropped. Only meaningful on open tags; on any other
// event it behaves like Remove.
func (h *StructureHandler) RemoveElement() {
	if h.declare(effectRemove) {
		h.removed = true
		h.removeElement = true
	}
}

// ReplaceWith declares that the current event is substituted by the given
// events. processable requests that the engine run the substituted events
// through the processor chain instead of skipping past them.
func (h *StructureHandler) ReplaceWith(processable bool, events ...markup.Event) {
	if h.declare(effectReplace) {
		h.replacement = events
		h.replaceProcessable = processable
	}
}

// ReplaceWithMarkup is ReplaceWith for a parsed fragment.
func (h *StructureHandler) ReplaceWithMarkup(m *markup.Markup, processable bool) {
	if h.declare(effectReplace) {
		h.replacement = markupEvents(m)
		h.replaceProcessable = processable
	}
}

// SetBody declares that the body of the current element becomes a single
// text event with the given content. processable=false marks the new body
// non-reprocessable: no processor or inliner will ever act on it.
func (h *StructureHandler) SetBody(text string, processable bool) {
	if h.declare(effectBody) {
		h.bodyEvents = []markup.Event{markup.NewText(text)}
		h.bodyProcessable = processable
	}
}

// SetBodyMarkup declares that the body of the current element becomes the
// events of a parsed fragment.
func (h *StructureHandler) SetBodyMarkup(m *markup.Markup, processable bool) {
	if h.declare(effectBody) {
		h.bodyEvents = markupEvents(m)
		h.bodyProcessable = processable
	}
}

// IterateBody declares that the body of the current element is emitted once
// per value, with varName bound to the value while each copy is processed.
// Each copy is fully independent and is re-processed exactly once.
func (h *StructureHandler) IterateBody(varName string, values []interface{}) {
	if h.declare(effectIterate) {
		h.iterVar = varName
		h.iterValues = values
	}
}

// InsertBefore declares sibling events placed immediately before the current
// event. They are not re-processed. Composable with every other effect.
func (h *StructureHandler) InsertBefore(events ...markup.Event) {
	h.before = append(h.before, events...)
}

// InsertAfter declares sibling events placed immediately after the current
// event. They are not re-processed. Composable with every other effect.
func (h *StructureHandler) InsertAfter(events ...markup.Event) {
	h.after = append(h.after, events...)
}

// Discarded reports whether the current event is already marked for removal
// or replacement. Later processors in the chain can consult this to skip
// work on markup that is being dropped; the engine itself stops the chain.
func (h *StructureHandler) Discarded() bool {
	return h.winner == effectRemove || h.winner == effectReplace
}

// Err returns the first conflicting-effect error, if any. Checked by the
// engine after every processor invocation so dialect bugs fail fast.
func (h *StructureHandler) Err() error { return h.err }

// Removal returns the declared removal effect.
func (h *StructureHandler) Removal() (element bool, ok bool) {
	return h.removeElement, h.removed
}

// Replacement returns the declared replacement effect.
func (h *StructureHandler) Replacement() (events []markup.Event, processable bool, ok bool) {
	return h.replacement, h.replaceProcessable, h.winner == effectReplace
}

// Body returns the declared set-body effect.
func (h *StructureHandler) Body() (events []markup.Event, processable bool, ok bool) {
	return h.bodyEvents, h.bodyProcessable, h.winner == effectBody
}

// Iteration returns the declared body-iteration effect.
func (h *StructureHandler) Iteration() (varName string, values []interface{}, ok bool) {
	return h.iterVar, h.iterValues, h.winner == effectIterate
}

// Insertions returns the declared sibling insertions.
func (h *StructureHandler) Insertions() (before, after []markup.Event) {
	return h.before, h.after
}

func markupEvents(m *markup.Markup) []markup.Event {
	events := make([]markup.Event, m.Size())
	for i := range events {
		events[i] = m.Get(i)
	}
	return events
}
