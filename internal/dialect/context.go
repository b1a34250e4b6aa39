package dialect

import "github.com/loomkit/loom/internal/markup"

type local struct {
	name  string
	value interface{}
}

// Context is the per-run state visible to processors: the template being
// processed, its mode, and the variables supplied by the caller plus any
// locals pushed by the engine (iteration variables). A Context belongs to a
// single processing run and is not safe for concurrent use.
type Context struct {
	Template string
	Mode     markup.TemplateMode
	vars     map[string]interface{}
	locals   []local
}

// NewContext creates the context for one processing run. vars may be nil.
func NewContext(template string, mode markup.TemplateMode, vars map[string]interface{}) *Context {
	return &Context{Template: template, Mode: mode, vars: vars}
}

// Var looks a variable up, innermost local scope first.
func (c *Context) Var(name string) (interface{}, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].value, true
		}
	}
	v, ok := c.vars[name]
	return v, ok
}

// SetVar sets a run-level variable.
func (c *Context) SetVar(name string, value interface{}) {
	if c.vars == nil {
		c.vars = make(map[string]interface{})
	}
	c.vars[name] = value
}

// PushLocal opens a local variable scope. Used by the engine around each
// iteration copy; processors normally only read via Var.
func (c *Context) PushLocal(name string, value interface{}) {
	c.locals = append(c.locals, local{name: name, value: value})
}

// PopLocal closes the innermost local scope.
func (c *Context) PopLocal() {
	if n := len(c.locals); n > 0 {
		c.locals = c.locals[:n-1]
	}
}
