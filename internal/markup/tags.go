package markup

import "io"

// OpenTag is the opening tag of a container element, e.g. `<div class="a">`.
type OpenTag struct {
	base
	mode  TemplateMode
	name  string
	attrs *Attributes
}

// NewOpenTag creates an open tag with an empty attribute collection.
func NewOpenTag(mode TemplateMode, name string) *OpenTag {
	return &OpenTag{mode: mode, name: name, attrs: NewAttributes(mode)}
}

// NewOpenTagAt creates an open tag at a source position.
func NewOpenTagAt(mode TemplateMode, name string, loc Location) *OpenTag {
	t := NewOpenTag(mode, name)
	t.loc = loc
	return t
}

func (t *OpenTag) Kind() EventKind { return KindOpenTag }

// Name returns the element name as written in the source.
func (t *OpenTag) Name() string { return t.name }

// Mode returns the template mode the tag was parsed under.
func (t *OpenTag) Mode() TemplateMode { return t.mode }

// Attributes returns the tag's ordered attribute collection. The collection
// shares the tag's mutability: it rejects mutation when the tag is frozen.
func (t *OpenTag) Attributes() *Attributes { return t.attrs }

func (t *OpenTag) Clone() Event {
	clone := *t
	clone.frozen = false
	clone.attrs = t.attrs.clone()
	return &clone
}

func (t *OpenTag) freeze() {
	t.base.freeze()
	t.attrs.freeze()
}

func (t *OpenTag) WriteTo(w io.Writer) (int64, error) {
	total, err := writeString(w, "<", t.name)
	if err != nil {
		return total, err
	}
	n, err := t.attrs.WriteTo(w)
	total += n
	if err != nil {
		return total, err
	}
	n2, err := writeString(w, ">")
	return total + n2, err
}

// CloseTag is the closing tag of a container element, e.g. `</div>`.
type CloseTag struct {
	base
	mode TemplateMode
	name string
}

// NewCloseTag creates a close tag.
func NewCloseTag(mode TemplateMode, name string) *CloseTag {
	return &CloseTag{mode: mode, name: name}
}

// NewCloseTagAt creates a close tag at a source position.
func NewCloseTagAt(mode TemplateMode, name string, loc Location) *CloseTag {
	return &CloseTag{base: base{loc: loc}, mode: mode, name: name}
}

func (t *CloseTag) Kind() EventKind { return KindCloseTag }

// Name returns the element name as written in the source.
func (t *CloseTag) Name() string { return t.name }

// Mode returns the template mode the tag was parsed under.
func (t *CloseTag) Mode() TemplateMode { return t.mode }

func (t *CloseTag) Clone() Event {
	clone := *t
	clone.frozen = false
	return &clone
}

func (t *CloseTag) WriteTo(w io.Writer) (int64, error) {
	return writeString(w, "</", t.name, ">")
}

// StandaloneTag is an element with no body: either a minimized tag
// (`<br/>`) or an HTML void element written without the slash (`<br>`).
type StandaloneTag struct {
	base
	mode      TemplateMode
	name      string
	attrs     *Attributes
	minimized bool
}

// NewStandaloneTag creates a standalone tag. minimized selects the `<x/>`
// output form over the void `<x>` form.
func NewStandaloneTag(mode TemplateMode, name string, minimized bool) *StandaloneTag {
	return &StandaloneTag{mode: mode, name: name, attrs: NewAttributes(mode), minimized: minimized}
}

// NewStandaloneTagAt creates a standalone tag at a source position.
func NewStandaloneTagAt(mode TemplateMode, name string, minimized bool, loc Location) *StandaloneTag {
	t := NewStandaloneTag(mode, name, minimized)
	t.loc = loc
	return t
}

func (t *StandaloneTag) Kind() EventKind { return KindStandaloneTag }

// Name returns the element name as written in the source.
func (t *StandaloneTag) Name() string { return t.name }

// Mode returns the template mode the tag was parsed under.
func (t *StandaloneTag) Mode() TemplateMode { return t.mode }

// Attributes returns the tag's ordered attribute collection.
func (t *StandaloneTag) Attributes() *Attributes { return t.attrs }

// Minimized reports whether the tag renders with a closing slash.
func (t *StandaloneTag) Minimized() bool { return t.minimized }

// SetMinimized switches between the `<x/>` and `<x>` output forms. Valid on
// mutable events only.
func (t *StandaloneTag) SetMinimized(minimized bool) error {
	if err := t.guard("SetMinimized"); err != nil {
		return err
	}
	t.minimized = minimized
	return nil
}

func (t *StandaloneTag) Clone() Event {
	clone := *t
	clone.frozen = false
	clone.attrs = t.attrs.clone()
	return &clone
}

func (t *StandaloneTag) freeze() {
	t.base.freeze()
	t.attrs.freeze()
}

func (t *StandaloneTag) WriteTo(w io.Writer) (int64, error) {
	total, err := writeString(w, "<", t.name)
	if err != nil {
		return total, err
	}
	n, err := t.attrs.WriteTo(w)
	total += n
	if err != nil {
		return total, err
	}
	var n2 int64
	if t.minimized {
		n2, err = writeString(w, "/>")
	} else {
		n2, err = writeString(w, ">")
	}
	return total + n2, err
}

// TagName returns the element name of a tag-bearing event and true, or false
// for any other event kind.
func TagName(ev Event) (string, bool) {
	switch t := ev.(type) {
	case *OpenTag:
		return t.name, true
	case *CloseTag:
		return t.name, true
	case *StandaloneTag:
		return t.name, true
	default:
		return "", false
	}
}

// TagAttributes returns the attribute collection of an attribute-bearing
// event and true, or false for close tags and non-tag events.
func TagAttributes(ev Event) (*Attributes, bool) {
	switch t := ev.(type) {
	case *OpenTag:
		return t.attrs, true
	case *StandaloneTag:
		return t.attrs, true
	default:
		return nil, false
	}
}
