package htmlparse

import "github.com/loomkit/loom/internal/markup"

// scanTag re-scans the raw bytes of a tag token to recover what the
// tokenizer's decoded form loses: attribute quoting style, literal values
// and per-attribute source positions. raw is a complete tag including the
// angle brackets, e.g. `<div class="a" hidden>` or `</div>`.
func scanTag(raw string, loc markup.Location) (string, []markup.Attribute) {
	s := &tagScanner{raw: raw, line: loc.Line, col: loc.Col, template: loc.Template}

	s.expect('<')
	s.accept('/')
	name := s.name()

	var attrs []markup.Attribute
	for {
		s.skipSpace()
		if s.done() || s.peek() == '>' || s.peek() == '/' {
			break
		}
		attrs = append(attrs, s.attribute())
	}
	return name, attrs
}

func addAttributes(dst *markup.Attributes, attrs []markup.Attribute) {
	for _, attr := range attrs {
		dst.Add(attr)
	}
}

type tagScanner struct {
	raw      string
	i        int
	line     int
	col      int
	template string
}

func (s *tagScanner) done() bool { return s.i >= len(s.raw) }

func (s *tagScanner) peek() byte { return s.raw[s.i] }

func (s *tagScanner) next() byte {
	c := s.raw[s.i]
	s.i++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *tagScanner) expect(c byte) {
	if !s.done() && s.peek() == c {
		s.next()
	}
}

func (s *tagScanner) accept(c byte) bool {
	if !s.done() && s.peek() == c {
		s.next()
		return true
	}
	return false
}

func (s *tagScanner) skipSpace() {
	for !s.done() && isSpace(s.peek()) {
		s.next()
	}
}

// name reads an element or attribute name.
func (s *tagScanner) name() string {
	start := s.i
	for !s.done() {
		c := s.peek()
		if isSpace(c) || c == '>' || c == '/' || c == '=' {
			break
		}
		s.next()
	}
	return s.raw[start:s.i]
}

func (s *tagScanner) attribute() markup.Attribute {
	attr := markup.Attribute{
		Loc: markup.Location{Template: s.template, Line: s.line, Col: s.col},
	}
	attr.Name = markup.ParseAttributeName(s.name())
	s.skipSpace()
	if !s.accept('=') {
		attr.Quotes = markup.QuotesNone
		return attr
	}
	s.skipSpace()
	attr.HasValue = true

	switch {
	case s.accept('"'):
		attr.Quotes = markup.QuotesDouble
		attr.Value = s.until('"')
	case s.accept('\''):
		attr.Quotes = markup.QuotesSingle
		attr.Value = s.until('\'')
	default:
		attr.Quotes = markup.QuotesNone
		start := s.i
		for !s.done() && !isSpace(s.peek()) && s.peek() != '>' {
			s.next()
		}
		attr.Value = s.raw[start:s.i]
	}
	return attr
}

func (s *tagScanner) until(quote byte) string {
	start := s.i
	for !s.done() && s.peek() != quote {
		s.next()
	}
	value := s.raw[start:s.i]
	s.accept(quote)
	return value
}
