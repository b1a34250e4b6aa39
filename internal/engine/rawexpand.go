package engine

import (
	"strings"

	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/markup"
)

// FragmentParser turns a piece of text into markup events. The template
// manager implements it; raw-content expansion uses it without caching,
// since runtime strings are far too variable to be worth cache entries.
type FragmentParser interface {
	ParseFragment(template string, text string, mode markup.TemplateMode) (*markup.Markup, error)
}

// RawExpander implements the expansion policy for processors that inject
// raw (unescaped) text as output. The injected content is always set as a
// non-reprocessable body: whatever it turns out to contain, it never
// re-enters the processor/inliner pipeline, so expression results cannot be
// treated as trusted template source. Post-processors are the only agents
// that can still see it, and they need parsed events, which is why parsing
// happens exactly when post-processors are registered.
type RawExpander struct {
	registry *dialect.Registry
	parser   FragmentParser
}

// NewRawExpander creates the expander used by unescaped-output processors.
func NewRawExpander(registry *dialect.Registry, parser FragmentParser) *RawExpander {
	return &RawExpander{registry: registry, parser: parser}
}

// ExpandBody declares text as the element's new body on h, deciding per
// invocation whether the text must be parsed into events or can be emitted
// as one opaque text node:
//
//   - no post-processors registered for the mode: plain text, always —
//     nothing downstream could need structural access;
//   - text without '>' and ']' characters: plain text — it cannot possibly
//     close a markup structure, so parsing would be pure overhead;
//   - otherwise: parse (uncached) and set the fragment as the body.
//
// Either way the body is non-reprocessable.
func (x *RawExpander) ExpandBody(ctx *dialect.Context, h *dialect.StructureHandler, text string) error {
	if x.registry.PostProcessorCount(ctx.Mode) == 0 {
		h.SetBody(text, false)
		return nil
	}
	if !mightContainStructures(text) {
		h.SetBody(text, false)
		return nil
	}
	fragment, err := x.parser.ParseFragment(ctx.Template, text, ctx.Mode)
	if err != nil {
		return errors.Wrap(errors.KindParse, err, "parsing unescaped output of template %q", ctx.Template)
	}
	h.SetBodyMarkup(fragment, false)
	return nil
}

// mightContainStructures is the cheap necessary condition for text to carry
// markup structure: a structure cannot end without '>' or ']'.
func mightContainStructures(text string) bool {
	return strings.ContainsAny(text, ">]")
}
