package markup

import "io"

// DocType is a <!DOCTYPE ...> declaration.
type DocType struct {
	base
	name           string
	publicID       string
	systemID       string
	internalSubset string
}

// NewDocType creates a doctype event. publicID, systemID and internalSubset
// may be empty; `NewDocType("html", "", "", "")` renders the HTML5 form.
func NewDocType(name, publicID, systemID, internalSubset string) *DocType {
	return &DocType{name: name, publicID: publicID, systemID: systemID, internalSubset: internalSubset}
}

// NewDocTypeAt creates a doctype event at a source position.
func NewDocTypeAt(name, publicID, systemID, internalSubset string, loc Location) *DocType {
	d := NewDocType(name, publicID, systemID, internalSubset)
	d.loc = loc
	return d
}

func (d *DocType) Kind() EventKind { return KindDocType }

// Name returns the root element name the doctype declares.
func (d *DocType) Name() string { return d.name }

// PublicID returns the PUBLIC identifier, empty when absent.
func (d *DocType) PublicID() string { return d.publicID }

// SystemID returns the SYSTEM identifier, empty when absent.
func (d *DocType) SystemID() string { return d.systemID }

// InternalSubset returns the internal subset, empty when absent.
func (d *DocType) InternalSubset() string { return d.internalSubset }

// SetIDs replaces the PUBLIC and SYSTEM identifiers. Valid on mutable events
// only.
func (d *DocType) SetIDs(publicID, systemID string) error {
	if err := d.guard("SetIDs"); err != nil {
		return err
	}
	d.publicID = publicID
	d.systemID = systemID
	return nil
}

// SetToHTML5 rewrites the declaration to the minimal HTML5 form. Valid on
// mutable events only.
func (d *DocType) SetToHTML5() error {
	if err := d.guard("SetToHTML5"); err != nil {
		return err
	}
	d.name = "html"
	d.publicID = ""
	d.systemID = ""
	d.internalSubset = ""
	return nil
}

func (d *DocType) Clone() Event {
	clone := *d
	clone.frozen = false
	return &clone
}

func (d *DocType) WriteTo(w io.Writer) (int64, error) {
	parts := []string{"<!DOCTYPE ", d.name}
	switch {
	case d.publicID != "":
		parts = append(parts, ` PUBLIC "`, d.publicID, `"`)
		if d.systemID != "" {
			parts = append(parts, ` "`, d.systemID, `"`)
		}
	case d.systemID != "":
		parts = append(parts, ` SYSTEM "`, d.systemID, `"`)
	}
	if d.internalSubset != "" {
		parts = append(parts, " [", d.internalSubset, "]")
	}
	parts = append(parts, ">")
	return writeString(w, parts...)
}

// XMLDeclaration is an <?xml ...?> declaration.
type XMLDeclaration struct {
	base
	version    string
	encoding   string
	standalone string
}

// NewXMLDeclaration creates an XML declaration event. encoding and standalone
// may be empty and are then omitted on output.
func NewXMLDeclaration(version, encoding, standalone string) *XMLDeclaration {
	return &XMLDeclaration{version: version, encoding: encoding, standalone: standalone}
}

// NewXMLDeclarationAt creates an XML declaration event at a source position.
func NewXMLDeclarationAt(version, encoding, standalone string, loc Location) *XMLDeclaration {
	x := NewXMLDeclaration(version, encoding, standalone)
	x.loc = loc
	return x
}

func (x *XMLDeclaration) Kind() EventKind { return KindXMLDeclaration }

// Version returns the declared XML version.
func (x *XMLDeclaration) Version() string { return x.version }

// Encoding returns the declared encoding, empty when absent.
func (x *XMLDeclaration) Encoding() string { return x.encoding }

// Standalone returns the standalone pseudo-attribute value, empty when
// absent.
func (x *XMLDeclaration) Standalone() string { return x.standalone }

// SetVersion replaces the declared version. Valid on mutable events only.
func (x *XMLDeclaration) SetVersion(version string) error {
	if err := x.guard("SetVersion"); err != nil {
		return err
	}
	x.version = version
	return nil
}

// SetEncoding replaces the declared encoding. Valid on mutable events only.
func (x *XMLDeclaration) SetEncoding(encoding string) error {
	if err := x.guard("SetEncoding"); err != nil {
		return err
	}
	x.encoding = encoding
	return nil
}

func (x *XMLDeclaration) Clone() Event {
	clone := *x
	clone.frozen = false
	return &clone
}

func (x *XMLDeclaration) WriteTo(w io.Writer) (int64, error) {
	parts := []string{`<?xml version="`, x.version, `"`}
	if x.encoding != "" {
		parts = append(parts, ` encoding="`, x.encoding, `"`)
	}
	if x.standalone != "" {
		parts = append(parts, ` standalone="`, x.standalone, `"`)
	}
	parts = append(parts, "?>")
	return writeString(w, parts...)
}

// ProcessingInstruction is a <?target content?> instruction.
type ProcessingInstruction struct {
	base
	target  string
	content string
}

// NewProcessingInstruction creates a processing instruction event.
func NewProcessingInstruction(target, content string) *ProcessingInstruction {
	return &ProcessingInstruction{target: target, content: content}
}

// NewProcessingInstructionAt creates a processing instruction event at a
// source position.
func NewProcessingInstructionAt(target, content string, loc Location) *ProcessingInstruction {
	return &ProcessingInstruction{base: base{loc: loc}, target: target, content: content}
}

func (p *ProcessingInstruction) Kind() EventKind { return KindProcessingInstruction }

// Target returns the instruction target.
func (p *ProcessingInstruction) Target() string { return p.target }

// Content returns the instruction content, empty when absent.
func (p *ProcessingInstruction) Content() string { return p.content }

// SetContent replaces the instruction content. Valid on mutable events only.
func (p *ProcessingInstruction) SetContent(content string) error {
	if err := p.guard("SetContent"); err != nil {
		return err
	}
	p.content = content
	return nil
}

func (p *ProcessingInstruction) Clone() Event {
	clone := *p
	clone.frozen = false
	return &clone
}

func (p *ProcessingInstruction) WriteTo(w io.Writer) (int64, error) {
	if p.content == "" {
		return writeString(w, "<?", p.target, "?>")
	}
	return writeString(w, "<?", p.target, " ", p.content, "?>")
}
