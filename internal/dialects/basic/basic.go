// Package basic is a small demonstration dialect exercising the full
// structure-handler protocol: escaped text bodies, unescaped bodies through
// the raw-content expansion policy, body iteration, attribute rewriting and
// element removal. Attribute values are plain variable names looked up in
// the processing context; there is deliberately no expression language.
package basic

import (
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/markup"
)

// Processor precedences, lower runs first. Iteration runs early so the
// remaining processors act on each produced copy; removal runs last.
const (
	PrecedenceEach   = 200
	PrecedenceAttr   = 700
	PrecedenceText   = 1300
	PrecedenceUText  = 1400
	PrecedenceRemove = 1600
)

// DefaultPrefix is the attribute namespace prefix used when none is given.
const DefaultPrefix = "lm"

// Dialect is the basic attribute dialect.
type Dialect struct {
	prefix     string
	processors []dialect.Processor
}

// New creates the dialect. expander handles the unescaped-output path and is
// normally built over the template manager; prefix "" selects DefaultPrefix.
func New(prefix string, expander *engine.RawExpander) *Dialect {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	d := &Dialect{prefix: prefix}
	d.processors = []dialect.Processor{
		&eachProcessor{attr: attr(prefix, "each")},
		&attrProcessor{attr: attr(prefix, "attr")},
		&textProcessor{attr: attr(prefix, "text")},
		&utextProcessor{attr: attr(prefix, "utext"), expander: expander},
		&removeProcessor{attr: attr(prefix, "remove")},
	}
	return d
}

// Name identifies the dialect.
func (d *Dialect) Name() string { return "basic" }

// Prefix returns the attribute namespace prefix.
func (d *Dialect) Prefix() string { return d.prefix }

// Modes lists the modes the dialect applies to.
func (d *Dialect) Modes() []markup.TemplateMode {
	return []markup.TemplateMode{markup.ModeHTML, markup.ModeXML}
}

// Processors returns the dialect's processors in declaration order.
func (d *Dialect) Processors(markup.TemplateMode) []dialect.Processor {
	return d.processors
}

func attr(prefix, name string) string {
	return prefix + ":" + name
}

// consume reads and removes the processor's own attribute from the tag so it
// can never match again on re-processed markup. Returns false when the event
// carries no such attribute (or is not an attribute-bearing tag at all).
func consume(ev markup.Event, name string) (string, bool, error) {
	attrs, ok := markup.TagAttributes(ev)
	if !ok {
		return "", false, nil
	}
	value, ok := attrs.Get(name)
	if !ok {
		return "", false, nil
	}
	if _, err := attrs.Remove(name); err != nil {
		return "", false, err
	}
	return value, true, nil
}

// lookup resolves a variable reference to its display string.
func lookup(ctx *dialect.Context, name string) string {
	v, ok := ctx.Var(strings.TrimSpace(name))
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// textProcessor sets the element body to the escaped value of a variable.
type textProcessor struct {
	attr string
}

func (p *textProcessor) Match() dialect.Match { return dialect.MatchAttribute(p.attr) }
func (p *textProcessor) Precedence() int   { return PrecedenceText }

func (p *textProcessor) Process(ctx *dialect.Context, ev markup.Event, h *dialect.StructureHandler) error {
	value, ok, err := consume(ev, p.attr)
	if err != nil || !ok {
		return err
	}
	h.SetBody(html.EscapeString(lookup(ctx, value)), false)
	return nil
}

// utextProcessor sets the element body to the unescaped value of a variable,
// routed through the raw-content expansion policy so the injected text can
// never re-enter the processor pipeline.
type utextProcessor struct {
	attr     string
	expander *engine.RawExpander
}

func (p *utextProcessor) Match() dialect.Match { return dialect.MatchAttribute(p.attr) }
func (p *utextProcessor) Precedence() int { return PrecedenceUText }

func (p *utextProcessor) Process(ctx *dialect.Context, ev markup.Event, h *dialect.StructureHandler) error {
	value, ok, err := consume(ev, p.attr)
	if err != nil || !ok {
		return err
	}
	return p.expander.ExpandBody(ctx, h, lookup(ctx, value))
}

// eachProcessor iterates the element body once per value of a collection
// variable. Syntax: `item : items`.
type eachProcessor struct {
	attr string
}

func (p *eachProcessor) Match() dialect.Match { return dialect.MatchAttribute(p.attr) }
func (p *eachProcessor) Precedence() int { return PrecedenceEach }

func (p *eachProcessor) Process(ctx *dialect.Context, ev markup.Event, h *dialect.StructureHandler) error {
	value, ok, err := consume(ev, p.attr)
	if err != nil || !ok {
		return err
	}
	varName, listName, found := strings.Cut(value, ":")
	if !found {
		return fmt.Errorf("%s: want `var : collection`, got %q", p.attr, value)
	}
	collection, _ := ctx.Var(strings.TrimSpace(listName))
	values, err := sliceValues(collection)
	if err != nil {
		return fmt.Errorf("%s: %w", p.attr, err)
	}
	h.IterateBody(strings.TrimSpace(varName), values)
	return nil
}

func sliceValues(collection interface{}) ([]interface{}, error) {
	if collection == nil {
		return nil, nil
	}
	if values, ok := collection.([]interface{}); ok {
		return values, nil
	}
	rv := reflect.ValueOf(collection)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot iterate over %T", collection)
	}
	values := make([]interface{}, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, nil
}

// attrProcessor sets an output attribute from a variable. Syntax:
// `name = var`.
type attrProcessor struct {
	attr string
}

func (p *attrProcessor) Match() dialect.Match { return dialect.MatchAttribute(p.attr) }
func (p *attrProcessor) Precedence() int { return PrecedenceAttr }

func (p *attrProcessor) Process(ctx *dialect.Context, ev markup.Event, h *dialect.StructureHandler) error {
	value, ok, err := consume(ev, p.attr)
	if err != nil || !ok {
		return err
	}
	name, varName, found := strings.Cut(value, "=")
	if !found {
		return fmt.Errorf("%s: want `name = var`, got %q", p.attr, value)
	}
	attrs, _ := markup.TagAttributes(ev)
	escaped := html.EscapeString(lookup(ctx, varName))
	return attrs.Set(strings.TrimSpace(name), escaped)
}

// removeProcessor removes markup. Value "all" drops the element with its
// whole body; "body" keeps the element but empties it.
type removeProcessor struct {
	attr string
}

func (p *removeProcessor) Match() dialect.Match { return dialect.MatchAttribute(p.attr) }
func (p *removeProcessor) Precedence() int { return PrecedenceRemove }

func (p *removeProcessor) Process(ctx *dialect.Context, ev markup.Event, h *dialect.StructureHandler) error {
	value, ok, err := consume(ev, p.attr)
	if err != nil || !ok {
		return err
	}
	switch strings.TrimSpace(value) {
	case "all":
		if ev.Kind() == markup.KindOpenTag {
			h.RemoveElement()
		} else {
			h.Remove()
		}
	case "body":
		h.SetBody("", false)
	default:
		return fmt.Errorf("%s: want \"all\" or \"body\", got %q", p.attr, value)
	}
	return nil
}
