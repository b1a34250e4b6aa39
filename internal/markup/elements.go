package markup

import "sync"

// ElementDefinition is the static, per-mode metadata of one element name:
// whether it may carry a body and whether its body is raw text. Definitions
// are resolved once per distinct name, shared, and never mutated afterwards.
type ElementDefinition struct {
	Name    string
	Void    bool
	RawText bool
}

// htmlVoidElements are the HTML elements that never have a body.
var htmlVoidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// htmlRawTextElements are the HTML elements whose body is not parsed as
// markup.
var htmlRawTextElements = map[string]bool{
	"script": true, "style": true, "textarea": true, "title": true,
}

// ElementDefinitions resolves and caches element metadata for one template
// mode. Safe for concurrent use; entries are created at most once per
// normalized name and are read-only after creation.
type ElementDefinitions struct {
	mode   TemplateMode
	mu     sync.RWMutex
	byName map[string]*ElementDefinition
}

// NewElementDefinitions creates an empty definition repository for a mode.
func NewElementDefinitions(mode TemplateMode) *ElementDefinitions {
	return &ElementDefinitions{
		mode:   mode,
		byName: make(map[string]*ElementDefinition),
	}
}

// Mode returns the template mode the definitions apply to.
func (d *ElementDefinitions) Mode() TemplateMode { return d.mode }

// ForName returns the shared definition for an element name, creating it on
// first use.
func (d *ElementDefinitions) ForName(name string) *ElementDefinition {
	key := d.mode.NormalizeName(name)

	d.mu.RLock()
	def := d.byName[key]
	d.mu.RUnlock()
	if def != nil {
		return def
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if def = d.byName[key]; def != nil {
		return def
	}
	def = &ElementDefinition{Name: key}
	if d.mode == ModeHTML {
		def.Void = htmlVoidElements[key]
		def.RawText = htmlRawTextElements[key]
	}
	d.byName[key] = def
	return def
}
