// Package htmlparse is the default lexer collaborator: it turns template
// source bytes into the engine's event sequence using the x/net/html
// tokenizer. The engine core never depends on this package — it consumes the
// manager's Parser interface — but the CLI and tests need a real event
// source.
//
// Event content is taken from the tokenizer's raw bytes, not its decoded
// token data, so entity references, attribute quoting and name casing
// survive a parse/render round trip byte-for-byte for well-formed input.
package htmlparse

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/markup"
)

// Parser produces markup events from template source.
type Parser struct {
	htmlDefs *markup.ElementDefinitions
}

// New creates a parser.
func New() *Parser {
	return &Parser{htmlDefs: markup.NewElementDefinitions(markup.ModeHTML)}
}

// Parse turns template source into a mutable event container. Non-structured
// modes (text, raw) yield a single text event.
func (p *Parser) Parse(template string, src []byte, mode markup.TemplateMode) (*markup.Markup, error) {
	m := markup.New(mode)
	if !mode.Structured() {
		if len(src) > 0 {
			m.Append(markup.NewTextAt(string(src), markup.Location{Template: template, Line: 1, Col: 1}))
		}
		return m, nil
	}

	z := html.NewTokenizer(bytes.NewReader(src))
	pos := position{line: 1, col: 1}

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, errors.Wrap(errors.KindParse, err, "tokenizing template %q", template)
			}
			return m, nil
		}

		raw := string(z.Raw())
		loc := markup.Location{Template: template, Line: pos.line, Col: pos.col}

		switch tt {
		case html.TextToken:
			m.Append(markup.NewTextAt(raw, loc))

		case html.CommentToken:
			m.Append(commentEvent(raw, loc))

		case html.DoctypeToken:
			m.Append(doctypeEvent(raw, loc))

		case html.StartTagToken:
			name, attrs := scanTag(raw, loc)
			if mode == markup.ModeHTML && p.htmlDefs.ForName(name).Void {
				tag := markup.NewStandaloneTagAt(mode, name, false, loc)
				addAttributes(tag.Attributes(), attrs)
				m.Append(tag)
			} else {
				tag := markup.NewOpenTagAt(mode, name, loc)
				addAttributes(tag.Attributes(), attrs)
				m.Append(tag)
			}

		case html.SelfClosingTagToken:
			name, attrs := scanTag(raw, loc)
			tag := markup.NewStandaloneTagAt(mode, name, true, loc)
			addAttributes(tag.Attributes(), attrs)
			m.Append(tag)

		case html.EndTagToken:
			name, _ := scanTag(raw, loc)
			m.Append(markup.NewCloseTagAt(mode, name, loc))
		}

		pos.advance(raw)
	}
}

// ParseFragment parses a piece of text produced at processing time. It is
// identical to Parse except that fragments are expected, not documents; the
// tokenizer accepts both.
func (p *Parser) ParseFragment(template string, text string, mode markup.TemplateMode) (*markup.Markup, error) {
	return p.Parse(template, []byte(text), mode)
}

// position tracks the 1-based line/column of the next unconsumed byte.
type position struct {
	line int
	col  int
}

func (p *position) advance(raw string) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
	}
}

// commentEvent maps a comment token to the right event: a real comment, a
// CDATA section, an XML declaration or a processing instruction. The HTML
// tokenizer reports the last three as (bogus) comments; the raw bytes tell
// them apart.
func commentEvent(raw string, loc markup.Location) markup.Event {
	if strings.HasPrefix(raw, "<![CDATA[") && strings.HasSuffix(raw, "]]>") {
		return markup.NewCDATASectionAt(raw[len("<![CDATA["):len(raw)-len("]]>")], loc)
	}
	if strings.HasPrefix(raw, "<?") {
		return instructionEvent(raw, loc)
	}
	content := strings.TrimSuffix(strings.TrimPrefix(raw, "<!--"), "-->")
	return markup.NewCommentAt(content, loc)
}

func instructionEvent(raw string, loc markup.Location) markup.Event {
	body := strings.TrimPrefix(raw, "<?")
	body = strings.TrimSuffix(body, "?>")
	body = strings.TrimSuffix(body, ">") // bogus-comment form swallows the '?'

	target := body
	content := ""
	if i := strings.IndexAny(body, " \t\r\n"); i >= 0 {
		target = body[:i]
		content = strings.TrimSpace(body[i+1:])
	}
	if strings.EqualFold(target, "xml") {
		return markup.NewXMLDeclarationAt(
			pseudoAttribute(content, "version"),
			pseudoAttribute(content, "encoding"),
			pseudoAttribute(content, "standalone"),
			loc)
	}
	return markup.NewProcessingInstructionAt(target, content, loc)
}

// pseudoAttribute extracts a quoted pseudo-attribute value from an XML
// declaration body.
func pseudoAttribute(body, name string) string {
	i := strings.Index(body, name)
	if i < 0 {
		return ""
	}
	rest := body[i+len(name):]
	rest = strings.TrimLeft(rest, " \t=")
	if rest == "" {
		return ""
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	rest = rest[1:]
	if j := strings.IndexByte(rest, quote); j >= 0 {
		return rest[:j]
	}
	return ""
}

// doctypeEvent parses `<!DOCTYPE name [PUBLIC|SYSTEM "..."] ...>` raw bytes.
func doctypeEvent(raw string, loc markup.Location) markup.Event {
	body := raw
	body = strings.TrimPrefix(body, "<!")
	body = strings.TrimSuffix(body, ">")
	fields := splitDoctype(body)

	name, publicID, systemID := "", "", ""
	// fields[0] is the DOCTYPE keyword itself
	if len(fields) > 1 {
		name = fields[1]
	}
	for i := 2; i < len(fields); i++ {
		switch strings.ToUpper(fields[i]) {
		case "PUBLIC":
			if i+1 < len(fields) {
				publicID = unquote(fields[i+1])
			}
			if i+2 < len(fields) {
				systemID = unquote(fields[i+2])
			}
			i = len(fields)
		case "SYSTEM":
			if i+1 < len(fields) {
				systemID = unquote(fields[i+1])
			}
			i = len(fields)
		}
	}
	return markup.NewDocTypeAt(name, publicID, systemID, "", loc)
}

// splitDoctype splits on whitespace but keeps quoted identifiers intact.
func splitDoctype(body string) []string {
	var fields []string
	i := 0
	for i < len(body) {
		for i < len(body) && isSpace(body[i]) {
			i++
		}
		if i >= len(body) {
			break
		}
		start := i
		if body[i] == '"' || body[i] == '\'' {
			quote := body[i]
			i++
			for i < len(body) && body[i] != quote {
				i++
			}
			i++ // include closing quote
		} else {
			for i < len(body) && !isSpace(body[i]) {
				i++
			}
		}
		fields = append(fields, body[start:i])
	}
	return fields
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}
