package basic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/htmlparse"
	"github.com/loomkit/loom/internal/manager"
	"github.com/loomkit/loom/internal/markup"
	"github.com/loomkit/loom/internal/resolve"
)

// render runs one template through the full stack: string resolver, HTML
// parser, manager cache and the engine with the basic dialect registered.
func render(t *testing.T, src string, vars map[string]interface{}) string {
	t.Helper()
	out, err := tryRender(src, vars)
	require.NoError(t, err)
	return out
}

func tryRender(src string, vars map[string]interface{}) (string, error) {
	registry := dialect.NewRegistry()
	mgr, err := manager.New(manager.Options{
		Resolver: resolve.StringResolver{"t.html": src},
		Parser:   htmlparse.New(),
		Registry: registry,
		Mode:     markup.ModeHTML,
	})
	if err != nil {
		return "", err
	}
	registry.Register(New("", engine.NewRawExpander(registry, mgr)))
	return mgr.ProcessToString("t.html", vars)
}

func TestDialectDefaults(t *testing.T) {
	d := New("", nil)
	assert.Equal(t, "basic", d.Name())
	assert.Equal(t, "lm", d.Prefix())
	assert.Len(t, d.Processors(markup.ModeHTML), 5)
	assert.Equal(t, []markup.TemplateMode{markup.ModeHTML, markup.ModeXML}, d.Modes())

	custom := New("x", nil)
	assert.Equal(t, "x", custom.Prefix())
}

func TestTextEscapesValue(t *testing.T) {
	out := render(t, `<p lm:text="msg">placeholder</p>`, map[string]interface{}{
		"msg": `<b>bold & "quoted"</b>`,
	})
	assert.Equal(t, `<p>&lt;b&gt;bold &amp; &#34;quoted&#34;&lt;/b&gt;</p>`, out)
}

func TestTextMissingVariableYieldsEmptyBody(t *testing.T) {
	out := render(t, `<p lm:text="missing">placeholder</p>`, nil)
	assert.Equal(t, `<p></p>`, out)
}

func TestUTextInjectsRawValue(t *testing.T) {
	out := render(t, `<div lm:utext="frag">x</div>`, map[string]interface{}{
		"frag": `<b>bold</b>`,
	})
	assert.Equal(t, `<div><b>bold</b></div>`, out)
}

func TestUTextOutputIsNotReprocessed(t *testing.T) {
	// the injected markup carries a dialect attribute; it must be inert
	out := render(t, `<div lm:utext="frag">x</div>`, map[string]interface{}{
		"frag":   `<p lm:text="secret">y</p>`,
		"secret": "leaked",
	})
	assert.Equal(t, `<div><p lm:text="secret">y</p></div>`, out)
}

func TestEachIteratesBody(t *testing.T) {
	out := render(t, `<ul lm:each="item : items"><li lm:text="item">x</li></ul>`, map[string]interface{}{
		"items": []string{"a", "b", "c"},
	})
	assert.Equal(t, `<ul><li>a</li><li>b</li><li>c</li></ul>`, out)
}

func TestEachEmptyCollection(t *testing.T) {
	out := render(t, `<ul lm:each="item : items"><li>x</li></ul>`, nil)
	assert.Equal(t, `<ul></ul>`, out)
}

func TestEachRejectsBadSyntax(t *testing.T) {
	_, err := tryRender(`<ul lm:each="items"><li>x</li></ul>`, map[string]interface{}{
		"items": []string{"a"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "var : collection")
}

func TestEachRejectsNonCollection(t *testing.T) {
	_, err := tryRender(`<ul lm:each="i : n"><li>x</li></ul>`, map[string]interface{}{
		"n": 42,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot iterate")
}

func TestAttrSetsAttribute(t *testing.T) {
	out := render(t, `<a lm:attr="href = target">link</a>`, map[string]interface{}{
		"target": "/home?a=1&b=2",
	})
	assert.Equal(t, `<a href="/home?a=1&amp;b=2">link</a>`, out)
}

func TestAttrOverwritesExistingAttribute(t *testing.T) {
	out := render(t, `<a href="old" lm:attr="href = target">link</a>`, map[string]interface{}{
		"target": "new",
	})
	assert.Equal(t, `<a href="new">link</a>`, out)
}

func TestRemoveAll(t *testing.T) {
	out := render(t, `<div>keep<aside lm:remove="all">gone<b>deep</b></aside>tail</div>`, nil)
	assert.Equal(t, `<div>keeptail</div>`, out)
}

func TestRemoveBody(t *testing.T) {
	out := render(t, `<div lm:remove="body">gone<b>deep</b></div>`, nil)
	assert.Equal(t, `<div></div>`, out)
}

func TestRemoveRejectsUnknownValue(t *testing.T) {
	_, err := tryRender(`<div lm:remove="tag">x</div>`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"all" or "body"`)
}

func TestProcessorsComposeOnOneElement(t *testing.T) {
	// iteration runs first, then attr and text act on every produced copy
	out := render(t,
		`<ul lm:each="u : users"><li lm:attr="data-user = u" lm:text="u">x</li></ul>`,
		map[string]interface{}{"users": []string{"ada", "grace"}},
	)
	assert.Equal(t, `<ul><li data-user="ada">ada</li><li data-user="grace">grace</li></ul>`, out)
}

func TestDialectIgnoresPlainMarkup(t *testing.T) {
	src := `<div class="x"><p>plain</p></div>`
	assert.Equal(t, src, render(t, src, nil))
}
