package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/markup"
)

func freshHandler() *StructureHandler {
	h := NewStructureHandler()
	h.Reset(markup.NewText("hello"))
	return h
}

func TestHandlerSingleEffects(t *testing.T) {
	t.Run("remove", func(t *testing.T) {
		h := freshHandler()
		h.Remove()
		require.NoError(t, h.Err())
		element, ok := h.Removal()
		assert.True(t, ok)
		assert.False(t, element)
		assert.True(t, h.Discarded())
	})

	t.Run("remove element", func(t *testing.T) {
		h := freshHandler()
		h.RemoveElement()
		require.NoError(t, h.Err())
		element, ok := h.Removal()
		assert.True(t, ok)
		assert.True(t, element)
	})

	t.Run("replace", func(t *testing.T) {
		h := freshHandler()
		h.ReplaceWith(true, markup.NewText("X"))
		require.NoError(t, h.Err())
		events, processable, ok := h.Replacement()
		require.True(t, ok)
		assert.True(t, processable)
		require.Len(t, events, 1)
		assert.True(t, h.Discarded())
	})

	t.Run("set body", func(t *testing.T) {
		h := freshHandler()
		h.SetBody("content", false)
		require.NoError(t, h.Err())
		events, processable, ok := h.Body()
		require.True(t, ok)
		assert.False(t, processable)
		require.Len(t, events, 1)
		assert.Equal(t, "content", events[0].(*markup.Text).Text())
		assert.False(t, h.Discarded())
	})

	t.Run("iterate", func(t *testing.T) {
		h := freshHandler()
		h.IterateBody("item", []interface{}{1, 2, 3})
		require.NoError(t, h.Err())
		name, values, ok := h.Iteration()
		require.True(t, ok)
		assert.Equal(t, "item", name)
		assert.Len(t, values, 3)
		assert.False(t, h.Discarded())
	})
}

func TestHandlerConflictingEffectsFailFast(t *testing.T) {
	cases := []struct {
		name   string
		first  func(h *StructureHandler)
		second func(h *StructureHandler)
	}{
		{"remove then replace", (*StructureHandler).Remove, func(h *StructureHandler) { h.ReplaceWith(false, markup.NewText("X")) }},
		{"replace then remove", func(h *StructureHandler) { h.ReplaceWith(false, markup.NewText("X")) }, (*StructureHandler).Remove},
		{"remove then set body", (*StructureHandler).Remove, func(h *StructureHandler) { h.SetBody("b", false) }},
		{"set body then iterate", func(h *StructureHandler) { h.SetBody("b", false) }, func(h *StructureHandler) { h.IterateBody("v", nil) }},
		{"iterate then replace", func(h *StructureHandler) { h.IterateBody("v", nil) }, func(h *StructureHandler) { h.ReplaceWith(false) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := freshHandler()
			tc.first(h)
			require.NoError(t, h.Err())
			tc.second(h)
			require.Error(t, h.Err())
			assert.True(t, errors.IsKind(h.Err(), errors.KindConflictingEffect))
		})
	}
}

func TestHandlerLastWriterWinsWithinFamily(t *testing.T) {
	h := freshHandler()
	h.SetBody("first", true)
	h.SetBody("second", false)
	require.NoError(t, h.Err())

	events, processable, ok := h.Body()
	require.True(t, ok)
	assert.False(t, processable)
	require.Len(t, events, 1)
	assert.Equal(t, "second", events[0].(*markup.Text).Text())

	h = freshHandler()
	h.ReplaceWith(false, markup.NewText("a"))
	h.ReplaceWith(true, markup.NewText("b"), markup.NewText("c"))
	require.NoError(t, h.Err())
	events, processable, ok = h.Replacement()
	require.True(t, ok)
	assert.True(t, processable)
	assert.Len(t, events, 2)
}

func TestHandlerInsertionsCompose(t *testing.T) {
	h := freshHandler()
	h.InsertBefore(markup.NewComment("before"))
	h.Remove()
	h.InsertAfter(markup.NewComment("after"))
	h.InsertAfter(markup.NewComment("after2"))
	require.NoError(t, h.Err())

	before, after := h.Insertions()
	assert.Len(t, before, 1)
	assert.Len(t, after, 2)
	_, ok := h.Removal()
	assert.True(t, ok)
}

func TestHandlerResetDropsState(t *testing.T) {
	h := freshHandler()
	h.Remove()
	h.ReplaceWith(false, markup.NewText("X"))
	require.Error(t, h.Err())

	next := markup.NewText("next")
	h.Reset(next)
	assert.NoError(t, h.Err())
	assert.False(t, h.Discarded())
	assert.Same(t, next, h.Event())
	_, ok := h.Removal()
	assert.False(t, ok)
	before, after := h.Insertions()
	assert.Empty(t, before)
	assert.Empty(t, after)
}

func TestHandlerErrorStopsFurtherDeclarations(t *testing.T) {
	h := freshHandler()
	h.Remove()
	h.SetBody("late", true)
	require.Error(t, h.Err())

	// the conflicting declaration must not have been recorded
	_, _, ok := h.Body()
	assert.False(t, ok)
	first := h.Err()
	h.ReplaceWith(true, markup.NewText("X"))
	assert.Same(t, first, h.Err())
}

func TestContextVariableScoping(t *testing.T) {
	ctx := NewContext("page", markup.ModeHTML, map[string]interface{}{"user": "ada"})

	v, ok := ctx.Var("user")
	require.True(t, ok)
	assert.Equal(t, "ada", v)

	_, ok = ctx.Var("missing")
	assert.False(t, ok)

	ctx.PushLocal("user", "grace")
	v, _ = ctx.Var("user")
	assert.Equal(t, "grace", v)

	ctx.PushLocal("user", "margaret")
	v, _ = ctx.Var("user")
	assert.Equal(t, "margaret", v)

	ctx.PopLocal()
	v, _ = ctx.Var("user")
	assert.Equal(t, "grace", v)

	ctx.PopLocal()
	v, _ = ctx.Var("user")
	assert.Equal(t, "ada", v)

	ctx.SetVar("lang", "en")
	v, ok = ctx.Var("lang")
	require.True(t, ok)
	assert.Equal(t, "en", v)
}
