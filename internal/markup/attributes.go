package markup

import (
	"io"

	"github.com/loomkit/loom/internal/errors"
)

func immutableAttributes(capability string) error {
	return errors.Immutable(capability)
}

// QuoteStyle is the quoting used around an attribute value in the source,
// preserved for output fidelity.
type QuoteStyle int

const (
	QuotesDouble QuoteStyle = iota
	QuotesSingle
	QuotesNone
)

// AttributeName is a qualified attribute name: an optional namespace prefix
// plus a local name.
type AttributeName struct {
	Prefix string
	Local  string
}

// ParseAttributeName splits a complete attribute name on its first colon.
func ParseAttributeName(complete string) AttributeName {
	for i := 0; i < len(complete); i++ {
		if complete[i] == ':' {
			return AttributeName{Prefix: complete[:i], Local: complete[i+1:]}
		}
	}
	return AttributeName{Local: complete}
}

// Complete returns the full source form of the name.
func (n AttributeName) Complete() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attribute is one attribute as written in the source: name, value, quoting
// and position. Valueless attributes (e.g. `disabled`) have an empty value
// and QuotesNone.
type Attribute struct {
	Name     AttributeName
	Value    string
	Quotes   QuoteStyle
	HasValue bool
	Loc      Location
}

// Attributes is the ordered attribute collection of a tag event. Lookup is
// case-normalized per template mode; insertion order is preserved for output
// fidelity. Mutating methods reject frozen collections.
type Attributes struct {
	mode   TemplateMode
	attrs  []Attribute
	frozen bool
}

// NewAttributes creates an empty collection for the given mode.
func NewAttributes(mode TemplateMode) *Attributes {
	return &Attributes{mode: mode}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.attrs) }

// Index returns the attribute at position i in source order.
func (a *Attributes) Index(i int) Attribute { return a.attrs[i] }

// Names returns all attribute names in source order.
func (a *Attributes) Names() []AttributeName {
	names := make([]AttributeName, len(a.attrs))
	for i, attr := range a.attrs {
		names[i] = attr.Name
	}
	return names
}

func (a *Attributes) find(complete string) int {
	want := a.mode.NormalizeName(complete)
	for i, attr := range a.attrs {
		if a.mode.NormalizeName(attr.Name.Complete()) == want {
			return i
		}
	}
	return -1
}

// Has reports whether an attribute with the given complete name is present.
func (a *Attributes) Has(complete string) bool {
	return a.find(complete) >= 0
}

// Get returns the value of the named attribute and whether it is present.
func (a *Attributes) Get(complete string) (string, bool) {
	if i := a.find(complete); i >= 0 {
		return a.attrs[i].Value, true
	}
	return "", false
}

// Lookup returns the full attribute record for the given complete name.
func (a *Attributes) Lookup(complete string) (Attribute, bool) {
	if i := a.find(complete); i >= 0 {
		return a.attrs[i], true
	}
	return Attribute{}, false
}

// Set assigns a double-quoted value to the named attribute, keeping its
// source position in the order when it already exists and appending
// otherwise. Valid on mutable collections only.
func (a *Attributes) Set(complete, value string) error {
	return a.SetQuoted(complete, value, QuotesDouble)
}

// SetQuoted is Set with an explicit quoting style.
func (a *Attributes) SetQuoted(complete, value string, quotes QuoteStyle) error {
	if a.frozen {
		return immutableAttributes("SetAttribute")
	}
	if i := a.find(complete); i >= 0 {
		a.attrs[i].Value = value
		a.attrs[i].Quotes = quotes
		a.attrs[i].HasValue = true
		return nil
	}
	a.attrs = append(a.attrs, Attribute{
		Name:     ParseAttributeName(complete),
		Value:    value,
		Quotes:   quotes,
		HasValue: true,
	})
	return nil
}

// Add appends a fully specified attribute, preserving whatever name casing,
// quoting and location the parser saw. Valid on mutable collections only.
func (a *Attributes) Add(attr Attribute) error {
	if a.frozen {
		return immutableAttributes("AddAttribute")
	}
	a.attrs = append(a.attrs, attr)
	return nil
}

// Remove deletes the named attribute if present, reporting whether it was.
// Valid on mutable collections only.
func (a *Attributes) Remove(complete string) (bool, error) {
	if a.frozen {
		return false, immutableAttributes("RemoveAttribute")
	}
	if i := a.find(complete); i >= 0 {
		a.attrs = append(a.attrs[:i], a.attrs[i+1:]...)
		return true, nil
	}
	return false, nil
}

// Clear removes all attributes. Valid on mutable collections only.
func (a *Attributes) Clear() error {
	if a.frozen {
		return immutableAttributes("ClearAttributes")
	}
	a.attrs = a.attrs[:0]
	return nil
}

func (a *Attributes) clone() *Attributes {
	clone := &Attributes{mode: a.mode}
	clone.attrs = make([]Attribute, len(a.attrs))
	copy(clone.attrs, a.attrs)
	return clone
}

func (a *Attributes) freeze() { a.frozen = true }

// WriteTo writes every attribute with a leading space, preserving source
// order and quoting.
func (a *Attributes) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, attr := range a.attrs {
		var parts []string
		if !attr.HasValue {
			parts = []string{" ", attr.Name.Complete()}
		} else {
			switch attr.Quotes {
			case QuotesSingle:
				parts = []string{" ", attr.Name.Complete(), "='", attr.Value, "'"}
			case QuotesNone:
				parts = []string{" ", attr.Name.Complete(), "=", attr.Value}
			default:
				parts = []string{" ", attr.Name.Complete(), `="`, attr.Value, `"`}
			}
		}
		n, err := writeString(w, parts...)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
