// Package engine drives the single forward processing pass over mutable
// markup: for each event it resolves the applicable processor chain from the
// registry, invokes it in precedence order against one shared structure
// handler, and applies the accumulated structural effect atomically before
// moving the cursor past whatever was substituted.
package engine

import (
	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/logging"
	"github.com/loomkit/loom/internal/markup"
)

// Engine processes markup with the processors of a registry. An Engine is
// stateless across runs and safe for concurrent use; each Process call works
// on its own exclusively owned container.
type Engine struct {
	registry *dialect.Registry
	log      logging.Logger
	maxSteps int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(log logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMaxSteps bounds the number of processor invocations in one run. Zero
// means unbounded. A processor that keeps re-inserting processable markup can
// loop forever; that is a processor bug, and this limit exists so test
// suites can turn such a bug into a failed run instead of a hang.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// New creates an engine over the given registry.
func New(registry *dialect.Registry, opts ...Option) *Engine {
	e := &Engine{registry: registry, log: logging.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine resolves processors from.
func (e *Engine) Registry() *dialect.Registry { return e.registry }

// Process rewrites m in place: one forward main pass applying every
// applicable processor, then one pass of the registered post-processors over
// the final sequence. m must be exclusively owned by the caller (a fork of
// cached markup, never cached markup itself). On error the run is aborted
// and m must be considered invalid; nothing has been written anywhere.
func (e *Engine) Process(ctx *dialect.Context, m *markup.Markup) error {
	r := &run{engine: e, ctx: ctx, handler: dialect.NewStructureHandler()}

	e.log.Debug("processing pass started", "template", ctx.Template, "mode", ctx.Mode.String(), "events", m.Size())

	if err := r.pass(m); err != nil {
		e.log.Error("processing pass failed", "template", ctx.Template, "error", err)
		return err
	}
	if err := r.postPass(m); err != nil {
		e.log.Error("post-processing pass failed", "template", ctx.Template, "error", err)
		return err
	}

	e.log.Debug("processing pass finished", "template", ctx.Template, "events", m.Size())
	return nil
}

// run is the per-Process state: the shared structure handler and the safety
// counter. Iteration re-enters pass on body copies, so the counter must
// outlive a single pass.
type run struct {
	engine  *Engine
	ctx     *dialect.Context
	handler *dialect.StructureHandler
	steps   int

	// inserted sibling events that still sit ahead of the cursor. Tracked by
	// identity rather than index, since effects applied in between shift
	// positions; the pass consumes an entry when it reaches the event.
	inserted map[markup.Event]struct{}
}

// pass is the main loop: a state machine over the event index with a single
// forward direction. The only terminal state is the cursor reaching the end
// of the container.
func (r *run) pass(m *markup.Markup) error {
	for i := 0; i < m.Size(); {
		ev := m.Get(i)

		if _, ok := r.inserted[ev]; ok {
			delete(r.inserted, ev)
			i++
			continue
		}

		bindings, err := r.engine.registry.Resolve(r.ctx.Mode, ev)
		if err != nil {
			return locate(err, r.ctx, ev)
		}
		if len(bindings) == 0 {
			i++
			continue
		}

		if err := r.chain(ev, bindings); err != nil {
			return err
		}

		next, err := r.apply(m, i, ev)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

// chain invokes the resolved processors in order against the shared handler.
// Effects declared by an earlier processor are visible to later ones, and
// the chain stops as soon as the event is marked removed or replaced since
// nothing downstream should handle markup that is being discarded.
func (r *run) chain(ev markup.Event, bindings []dialect.Binding) error {
	r.handler.Reset(ev)
	for _, b := range bindings {
		if r.handler.Discarded() {
			break
		}
		if err := r.step(); err != nil {
			return locate(err, r.ctx, ev)
		}
		if err := b.Processor.Process(r.ctx, ev, r.handler); err != nil {
			return locate(err, r.ctx, ev)
		}
		if err := r.handler.Err(); err != nil {
			return locate(err, r.ctx, ev)
		}
	}
	return nil
}

// apply performs the accumulated structural effect for the event at index i
// and returns the next cursor position. Freshly substituted events are never
// revisited unless the effect explicitly requested re-processing.
func (r *run) apply(m *markup.Markup, i int, ev markup.Event) (int, error) {
	h := r.handler
	before, after := h.Insertions()

	if len(before) > 0 {
		m.Insert(i, before...)
		i += len(before)
	}

	next := i + 1
	afterPos := i + 1

	switch {
	case removed(h):
		element, _ := h.Removal()
		if open, ok := ev.(*markup.OpenTag); ok && element {
			j, err := r.matchingClose(m, i, open)
			if err != nil {
				return 0, err
			}
			m.Remove(i, j+1)
		} else {
			m.Remove(i, i+1)
		}
		next, afterPos = i, i

	case replaced(h):
		events, processable, _ := h.Replacement()
		m.Replace(i, i+1, events...)
		afterPos = i + len(events)
		if processable {
			next = i
		} else {
			next = afterPos
		}

	case bodySet(h):
		events, processable, _ := h.Body()
		var err error
		next, afterPos, err = r.applyBody(m, i, ev, events, processable)
		if err != nil {
			return 0, err
		}

	case iterated(h):
		varName, values, _ := h.Iteration()
		var err error
		next, afterPos, err = r.applyIteration(m, i, ev, varName, values)
		if err != nil {
			return 0, err
		}
	}

	if len(after) > 0 {
		m.Insert(afterPos, after...)
		if next >= afterPos {
			next += len(after)
		} else {
			// The cursor re-enters before the insertion point (re-processable
			// substitution, fresh body, iteration). Mark the inserted events so
			// the pass walks over them without handing them to processors.
			if r.inserted == nil {
				r.inserted = make(map[markup.Event]struct{}, len(after))
			}
			for _, ae := range after {
				r.inserted[ae] = struct{}{}
			}
		}
	}
	return next, nil
}

// applyBody substitutes the element's body span with the declared events.
// A standalone tag grows into an open/body/close triple. Non-reprocessable
// bodies are skipped by the cursor, which is what keeps injected content out
// of the processor pipeline.
func (r *run) applyBody(m *markup.Markup, i int, ev markup.Event, body []markup.Event, processable bool) (next, afterPos int, err error) {
	switch t := ev.(type) {
	case *markup.OpenTag:
		j, err := r.matchingClose(m, i, t)
		if err != nil {
			return 0, 0, err
		}
		m.Replace(i+1, j, body...)
	case *markup.StandaloneTag:
		open := markup.NewOpenTagAt(t.Mode(), t.Name(), t.Location())
		for k := 0; k < t.Attributes().Len(); k++ {
			open.Attributes().Add(t.Attributes().Index(k))
		}
		events := append([]markup.Event{open}, body...)
		events = append(events, markup.NewCloseTag(t.Mode(), t.Name()))
		m.Replace(i, i+1, events...)
	default:
		return 0, 0, locate(errors.New(errors.KindProcessor,
			"set-body declared on a %s event; bodies exist on element tags only", ev.Kind()), r.ctx, ev)
	}
	if processable {
		next = i + 1
	} else {
		next = i + 1 + len(body)
	}
	// close tag of the element, plus one
	return next, i + 1 + len(body) + 1, nil
}

// applyIteration extracts the element's body span and splices in one fully
// independent, already re-processed copy per value, with the iteration
// variable bound as a local while each copy is processed.
func (r *run) applyIteration(m *markup.Markup, i int, ev markup.Event, varName string, values []interface{}) (next, afterPos int, err error) {
	open, ok := ev.(*markup.OpenTag)
	if !ok {
		return 0, 0, locate(errors.New(errors.KindProcessor,
			"iterate-body declared on a %s event; iteration requires an open tag", ev.Kind()), r.ctx, ev)
	}
	j, err := r.matchingClose(m, i, open)
	if err != nil {
		return 0, 0, err
	}

	template := make([]markup.Event, j-(i+1))
	for k := range template {
		template[k] = m.Get(i + 1 + k)
	}

	var produced []markup.Event
	for _, value := range values {
		copyMarkup := markup.New(m.Mode())
		for _, tev := range template {
			copyMarkup.Append(tev.Clone())
		}
		r.ctx.PushLocal(varName, value)
		err := r.pass(copyMarkup)
		r.ctx.PopLocal()
		if err != nil {
			return 0, 0, err
		}
		for k := 0; k < copyMarkup.Size(); k++ {
			produced = append(produced, copyMarkup.Get(k))
		}
	}

	m.Replace(i+1, j, produced...)
	next = i + 1 + len(produced)
	return next, next + 1, nil
}

// matchingClose finds the close tag balancing the open tag at index i.
func (r *run) matchingClose(m *markup.Markup, i int, open *markup.OpenTag) (int, error) {
	depth := 0
	for k := i + 1; k < m.Size(); k++ {
		switch m.Get(k).(type) {
		case *markup.OpenTag:
			depth++
		case *markup.CloseTag:
			if depth == 0 {
				return k, nil
			}
			depth--
		}
	}
	return 0, locate(errors.New(errors.KindProcessor,
		"no matching close tag for <%s>", open.Name()), r.ctx, open)
}

func (r *run) step() error {
	r.steps++
	if r.engine.maxSteps > 0 && r.steps > r.engine.maxSteps {
		return errors.New(errors.KindProcessor,
			"processing exceeded %d processor invocations; a processor is likely re-inserting processable markup without bound", r.engine.maxSteps)
	}
	return nil
}

// postPass runs the registered post-processors over the final sequence. Post
// pass substitutions are never re-processed; this is the only agent that ever
// sees content marked non-reprocessable by the main pass.
func (r *run) postPass(m *markup.Markup) error {
	post := r.engine.registry.PostProcessors(r.ctx.Mode)
	if len(post) == 0 {
		return nil
	}
	for i := 0; i < m.Size(); {
		ev := m.Get(i)
		applicable := post[:0:0]
		for _, b := range post {
			if b.Processor.Match().Applies(r.ctx.Mode, ev) {
				applicable = append(applicable, b)
			}
		}
		if len(applicable) == 0 {
			i++
			continue
		}
		if err := r.chain(ev, applicable); err != nil {
			return err
		}
		next, err := r.applyPost(m, i, ev)
		if err != nil {
			return err
		}
		i = next
	}
	return nil
}

// applyPost applies effects in the post pass, where nothing is ever
// re-processed regardless of the declared processable flags.
func (r *run) applyPost(m *markup.Markup, i int, ev markup.Event) (int, error) {
	h := r.handler
	before, after := h.Insertions()
	if len(before) > 0 {
		m.Insert(i, before...)
		i += len(before)
	}
	next := i + 1
	switch {
	case removed(h):
		m.Remove(i, i+1)
		next = i
	case replaced(h):
		events, _, _ := h.Replacement()
		m.Replace(i, i+1, events...)
		next = i + len(events)
	case bodySet(h), iterated(h):
		return 0, locate(errors.New(errors.KindProcessor,
			"body effects are not available to post-processors"), r.ctx, ev)
	}
	if len(after) > 0 {
		m.Insert(next, after...)
		next += len(after)
	}
	return next, nil
}

func removed(h *dialect.StructureHandler) bool {
	_, ok := h.Removal()
	return ok
}

func replaced(h *dialect.StructureHandler) bool {
	_, _, ok := h.Replacement()
	return ok
}

func bodySet(h *dialect.StructureHandler) bool {
	_, _, ok := h.Body()
	return ok
}

func iterated(h *dialect.StructureHandler) bool {
	_, _, ok := h.Iteration()
	return ok
}

// locate attaches the event's source position (or at least the template
// name) to an error before it aborts the run.
func locate(err error, ctx *dialect.Context, ev markup.Event) error {
	loc := ev.Location()
	if loc.IsZero() {
		return errors.At(err, ctx.Template, 0, 0)
	}
	return errors.At(err, loc.Template, loc.Line, loc.Col)
}
