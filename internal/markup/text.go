package markup

import "io"

// Text is a run of template text. The stored value is the literal textual
// form from the source (entity references included), which is what rendering
// re-emits, keeping untouched input byte-identical on output.
type Text struct {
	base
	text string
}

// NewText creates a text event without location.
func NewText(text string) *Text {
	return &Text{text: text}
}

// NewTextAt creates a text event at a source position.
func NewTextAt(text string, loc Location) *Text {
	return &Text{base: base{loc: loc}, text: text}
}

func (t *Text) Kind() EventKind { return KindText }

// Text returns the literal text.
func (t *Text) Text() string { return t.text }

// IsWhitespace reports whether the text consists solely of whitespace.
func (t *Text) IsWhitespace() bool {
	for i := 0; i < len(t.text); i++ {
		switch t.text[i] {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return len(t.text) > 0
}

// SetText replaces the literal text. Valid on mutable events only.
func (t *Text) SetText(text string) error {
	if err := t.guard("SetText"); err != nil {
		return err
	}
	t.text = text
	return nil
}

func (t *Text) Clone() Event {
	clone := *t
	clone.frozen = false
	return &clone
}

func (t *Text) WriteTo(w io.Writer) (int64, error) {
	return writeString(w, t.text)
}

// CDATASection is a <![CDATA[ ... ]]> block. Content excludes the delimiters.
type CDATASection struct {
	base
	content string
}

// NewCDATASection creates a CDATA event without location.
func NewCDATASection(content string) *CDATASection {
	return &CDATASection{content: content}
}

// NewCDATASectionAt creates a CDATA event at a source position.
func NewCDATASectionAt(content string, loc Location) *CDATASection {
	return &CDATASection{base: base{loc: loc}, content: content}
}

func (c *CDATASection) Kind() EventKind { return KindCDATA }

// Content returns the text between the CDATA delimiters.
func (c *CDATASection) Content() string { return c.content }

// SetContent replaces the CDATA content. Valid on mutable events only.
func (c *CDATASection) SetContent(content string) error {
	if err := c.guard("SetContent"); err != nil {
		return err
	}
	c.content = content
	return nil
}

func (c *CDATASection) Clone() Event {
	clone := *c
	clone.frozen = false
	return &clone
}

func (c *CDATASection) WriteTo(w io.Writer) (int64, error) {
	return writeString(w, "<![CDATA[", c.content, "]]>")
}

// Comment is a <!-- ... --> block. Content excludes the delimiters.
type Comment struct {
	base
	content string
}

// NewComment creates a comment event without location.
func NewComment(content string) *Comment {
	return &Comment{content: content}
}

// NewCommentAt creates a comment event at a source position.
func NewCommentAt(content string, loc Location) *Comment {
	return &Comment{base: base{loc: loc}, content: content}
}

func (c *Comment) Kind() EventKind { return KindComment }

// Content returns the text between the comment delimiters.
func (c *Comment) Content() string { return c.content }

// SetContent replaces the comment content. Valid on mutable events only.
func (c *Comment) SetContent(content string) error {
	if err := c.guard("SetContent"); err != nil {
		return err
	}
	c.content = content
	return nil
}

func (c *Comment) Clone() Event {
	clone := *c
	clone.frozen = false
	return &clone
}

func (c *Comment) WriteTo(w io.Writer) (int64, error) {
	return writeString(w, "<!--", c.content, "-->")
}
