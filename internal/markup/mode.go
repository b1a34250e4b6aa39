package markup

import "fmt"

// TemplateMode is the markup dialect family governing parsing, escaping and
// name-normalization rules for a template.
type TemplateMode int

const (
	// ModeHTML treats element and attribute names case-insensitively and
	// knows the HTML void elements.
	ModeHTML TemplateMode = iota
	// ModeXML is case-sensitive and has no void elements.
	ModeXML
	// ModeText has no markup structure at all; a template is one text event.
	ModeText
	// ModeRaw is like ModeText but is never escaped on output.
	ModeRaw
)

// String returns the mode name as used in configuration files.
func (m TemplateMode) String() string {
	switch m {
	case ModeHTML:
		return "html"
	case ModeXML:
		return "xml"
	case ModeText:
		return "text"
	case ModeRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// CaseSensitive reports whether element and attribute names keep their case
// for matching purposes in this mode.
func (m TemplateMode) CaseSensitive() bool {
	return m != ModeHTML
}

// Structured reports whether templates in this mode carry markup structure.
func (m TemplateMode) Structured() bool {
	return m == ModeHTML || m == ModeXML
}

// ParseMode maps a configuration string to a TemplateMode.
func ParseMode(s string) (TemplateMode, error) {
	switch s {
	case "html", "":
		return ModeHTML, nil
	case "xml":
		return ModeXML, nil
	case "text":
		return ModeText, nil
	case "raw":
		return ModeRaw, nil
	default:
		return ModeHTML, fmt.Errorf("unknown template mode %q", s)
	}
}

// NormalizeName returns the matching form of an element or attribute name in
// this mode. HTML lowercases ASCII letters; all other modes match verbatim.
func (m TemplateMode) NormalizeName(name string) string {
	if m.CaseSensitive() {
		return name
	}
	return asciiLower(name)
}

func asciiLower(s string) string {
	lower := []byte(s)
	changed := false
	for i := 0; i < len(lower); i++ {
		if c := lower[i]; c >= 'A' && c <= 'Z' {
			lower[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(lower)
}
