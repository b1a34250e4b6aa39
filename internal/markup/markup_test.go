package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleDoc() *Markup {
	div := NewOpenTag(ModeHTML, "div")
	div.Attributes().Set("class", "box")
	return Of(ModeHTML,
		div,
		NewText("hello"),
		NewCloseTag(ModeHTML, "div"),
	)
}

func TestMarkupRender(t *testing.T) {
	assert.Equal(t, `<div class="box">hello</div>`, simpleDoc().Render())
}

func TestMarkupInsertRemoveReplace(t *testing.T) {
	m := Of(ModeHTML, NewText("a"), NewText("c"))

	m.Insert(1, NewText("b"))
	assert.Equal(t, "abc", m.Render())

	m.Replace(1, 2, NewText("B"), NewText("B"))
	assert.Equal(t, "aBBc", m.Render())

	m.Remove(1, 3)
	assert.Equal(t, "ac", m.Render())

	m.Append(NewText("d"))
	assert.Equal(t, "acd", m.Render())
}

func TestMarkupInsertAtEndAppends(t *testing.T) {
	m := Of(ModeHTML, NewText("a"))
	m.Insert(1, NewText("b"))
	assert.Equal(t, "ab", m.Render())
}

func TestMarkupRangeChecks(t *testing.T) {
	m := Of(ModeHTML, NewText("a"))
	assert.Panics(t, func() { m.Get(1) })
	assert.Panics(t, func() { m.Remove(0, 2) })
	assert.Panics(t, func() { m.Insert(-1, NewText("x")) })
}

func TestMarkupCloneIsDeep(t *testing.T) {
	original := simpleDoc()
	clone := original.Clone()

	require.Equal(t, original.Render(), clone.Render())

	text := clone.Get(1).(*Text)
	require.NoError(t, text.SetText("changed"))
	tag := clone.Get(0).(*OpenTag)
	require.NoError(t, tag.Attributes().Set("class", "other"))

	assert.Equal(t, `<div class="box">hello</div>`, original.Render())
	assert.Equal(t, `<div class="other">changed</div>`, clone.Render())
}
