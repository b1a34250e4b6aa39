package markup

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genEvents produces arbitrary event sequences mixing every kind the
// generator can build from plain strings.
func genEvents() gopter.Gen {
	genText := gen.AlphaString().Map(func(s string) Event { return NewText(s) })
	genComment := gen.AlphaString().Map(func(s string) Event { return NewComment(s) })
	genCDATA := gen.AlphaString().Map(func(s string) Event { return NewCDATASection(s) })
	genPI := gen.Identifier().Map(func(s string) Event { return NewProcessingInstruction(s, "") })
	genTagged := gen.Identifier().Map(func(name string) Event {
		tag := NewOpenTag(ModeHTML, name)
		tag.Attributes().Set("id", name)
		return tag
	})
	genClose := gen.Identifier().Map(func(name string) Event { return NewCloseTag(ModeHTML, name) })
	genStandalone := gen.Identifier().Map(func(name string) Event {
		return NewStandaloneTag(ModeHTML, name, true)
	})

	return gen.SliceOf(gen.OneGenOf(
		genText, genComment, genCDATA, genPI, genTagged, genClose, genStandalone,
	))
}

func TestFreezeForkRenderEqualityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("render(m) == render(freeze(m).Fork())", prop.ForAll(
		func(events []Event) bool {
			m := Of(ModeHTML, events...)
			return m.Render() == Freeze(m).Fork().Render()
		},
		genEvents(),
	))

	properties.Property("mutating a fork never changes the frozen render", prop.ForAll(
		func(events []Event) bool {
			m := Of(ModeHTML, events...)
			frozen := Freeze(m)
			before := frozen.Render()

			fork := frozen.Fork()
			for i := 0; i < fork.Size(); i++ {
				if text, ok := fork.Get(i).(*Text); ok {
					if err := text.SetText("mutated"); err != nil {
						return false
					}
				}
			}
			if fork.Size() > 0 {
				fork.Remove(0, 1)
			}
			return frozen.Render() == before
		},
		genEvents(),
	))

	properties.Property("clone renders identically and shares nothing", prop.ForAll(
		func(events []Event) bool {
			m := Of(ModeHTML, events...)
			clone := m.Clone()
			if m.Render() != clone.Render() {
				return false
			}
			before := m.Render()
			for i := 0; i < clone.Size(); i++ {
				if text, ok := clone.Get(i).(*Text); ok {
					if err := text.SetText("mutated"); err != nil {
						return false
					}
				}
			}
			return m.Render() == before
		},
		genEvents(),
	))

	properties.TestingRun(t)
}
