package dialect

import (
	"sort"
	"sync"

	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/markup"
)

// Binding associates one processor with the dialect that contributed it and
// the ordering keys that make resolution deterministic: precedence first,
// then dialect registration order, then processor declaration order.
type Binding struct {
	Dialect   string
	Processor Processor

	precedence   int
	dialectOrder int
	declOrder    int
	byName       bool
}

// Precedence returns the processor's precedence; lower runs first.
func (b Binding) Precedence() int { return b.precedence }

type modeIndex struct {
	byElement   map[string][]Binding
	byAttribute map[string][]Binding
	byKind      map[markup.EventKind][]Binding
	post        []Binding
	processors  int
}

func newModeIndex() *modeIndex {
	return &modeIndex{
		byElement:   make(map[string][]Binding),
		byAttribute: make(map[string][]Binding),
		byKind:      make(map[markup.EventKind][]Binding),
	}
}

// Registry holds the processors of all registered dialects, indexed per
// template mode by applicability. It is populated at configuration time via
// Register and read-only afterwards; Resolve is safe for concurrent use once
// registration is done.
type Registry struct {
	mu       sync.RWMutex
	modes    map[markup.TemplateMode]*modeIndex
	dialects int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modes: make(map[markup.TemplateMode]*modeIndex)}
}

// Register adds every processor of the dialect for every mode the dialect
// declares. Registration order is the documented tie-break for processors of
// equal precedence from different dialects: the dialect registered first
// wins; within one dialect, declaration order decides.
func (r *Registry) Register(d Dialect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dialectOrder := r.dialects
	r.dialects++

	for _, mode := range d.Modes() {
		idx := r.modes[mode]
		if idx == nil {
			idx = newModeIndex()
			r.modes[mode] = idx
		}
		for declOrder, p := range d.Processors(mode) {
			b := Binding{
				Dialect:      d.Name(),
				Processor:    p,
				precedence:   p.Precedence(),
				dialectOrder: dialectOrder,
				declOrder:    declOrder,
				byName:       p.Match().ByName(),
			}
			m := p.Match()
			switch {
			case m.ElementName != "":
				key := mode.NormalizeName(m.ElementName)
				idx.byElement[key] = append(idx.byElement[key], b)
			case m.AttributeName != "":
				key := mode.NormalizeName(m.AttributeName)
				idx.byAttribute[key] = append(idx.byAttribute[key], b)
			default:
				idx.byKind[m.Kind] = append(idx.byKind[m.Kind], b)
			}
			idx.processors++
		}
		if pd, ok := d.(PostProcessorDialect); ok {
			for declOrder, p := range pd.PostProcessors(mode) {
				idx.post = append(idx.post, Binding{
					Dialect:      d.Name(),
					Processor:    p,
					precedence:   p.Precedence(),
					dialectOrder: dialectOrder,
					declOrder:    declOrder,
					byName:       p.Match().ByName(),
				})
			}
			sortBindings(idx.post)
		}
	}
}

// HasProcessors reports whether any dialect contributed main-pass processors
// for the mode. When false (and no post-processors exist either) the
// orchestration layer can render cached markup directly without forking a
// working copy.
func (r *Registry) HasProcessors(mode markup.TemplateMode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.modes[mode]
	return idx != nil && idx.processors > 0
}

// PostProcessorCount returns the number of post-processors registered for
// the mode. The unescaped-content expansion policy gates its parse path on
// this being non-zero.
func (r *Registry) PostProcessorCount(mode markup.TemplateMode) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.modes[mode]; idx != nil {
		return len(idx.post)
	}
	return 0
}

// PostProcessors returns the post-processor bindings for the mode, already
// in invocation order.
func (r *Registry) PostProcessors(mode markup.TemplateMode) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.modes[mode]; idx != nil {
		return idx.post
	}
	return nil
}

// Resolve returns the processors applicable to ev in invocation order:
// exact element/attribute matches before kind wildcards, then ascending
// precedence, then dialect registration order, then declaration order.
func (r *Registry) Resolve(mode markup.TemplateMode, ev markup.Event) ([]Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.modes[mode]
	if idx == nil {
		return nil, nil
	}

	kind := ev.Kind()
	switch kind {
	case markup.KindText, markup.KindCDATA, markup.KindComment, markup.KindDocType,
		markup.KindXMLDeclaration, markup.KindProcessingInstruction,
		markup.KindOpenTag, markup.KindCloseTag, markup.KindStandaloneTag:
	default:
		return nil, errors.New(errors.KindUnknownEvent,
			"no processor resolution for event kind %d", int(kind))
	}

	var matched []Binding
	if name, ok := markup.TagName(ev); ok && kind != markup.KindCloseTag {
		matched = append(matched, idx.byElement[mode.NormalizeName(name)]...)
		if attrs, ok := markup.TagAttributes(ev); ok {
			for _, an := range attrs.Names() {
				matched = append(matched, idx.byAttribute[mode.NormalizeName(an.Complete())]...)
			}
		}
	}
	matched = append(matched, idx.byKind[kind]...)
	if len(matched) == 0 {
		return nil, nil
	}

	ordered := make([]Binding, len(matched))
	copy(ordered, matched)
	sortBindings(ordered)
	return ordered, nil
}

func sortBindings(bindings []Binding) {
	sort.SliceStable(bindings, func(i, j int) bool {
		a, b := bindings[i], bindings[j]
		if a.byName != b.byName {
			return a.byName
		}
		if a.precedence != b.precedence {
			return a.precedence < b.precedence
		}
		if a.dialectOrder != b.dialectOrder {
			return a.dialectOrder < b.dialectOrder
		}
		return a.declOrder < b.declOrder
	})
}
