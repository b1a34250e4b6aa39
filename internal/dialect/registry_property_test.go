package dialect

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/loomkit/loom/internal/markup"
)

// genDialects produces random dialect sets: each dialect holds a few text
// processors with arbitrary precedences.
func genDialects() gopter.Gen {
	genPrecedences := gen.SliceOfN(4, gen.IntRange(0, 1000))
	return gen.SliceOf(genPrecedences)
}

func registryOf(dialectPrecedences [][]int) *Registry {
	r := NewRegistry()
	for d, precedences := range dialectPrecedences {
		processors := make([]Processor, len(precedences))
		for i, precedence := range precedences {
			processors[i] = stubProcessor{
				id:         "p",
				match:      MatchKind(markup.KindText),
				precedence: precedence,
			}
		}
		r.Register(stubDialect{
			name:       string(rune('a' + d%26)),
			modes:      []markup.TemplateMode{markup.ModeHTML},
			processors: processors,
		})
	}
	return r
}

func TestRegistryResolutionOrderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("resolution is sorted by ascending precedence", prop.ForAll(
		func(dialectPrecedences [][]int) bool {
			r := registryOf(dialectPrecedences)
			bindings, err := r.Resolve(markup.ModeHTML, markup.NewText("x"))
			if err != nil {
				return false
			}
			for i := 1; i < len(bindings); i++ {
				if bindings[i-1].Precedence() > bindings[i].Precedence() {
					return false
				}
			}
			return true
		},
		genDialects(),
	))

	properties.Property("every applicable processor is resolved exactly once", prop.ForAll(
		func(dialectPrecedences [][]int) bool {
			total := 0
			for _, precedences := range dialectPrecedences {
				total += len(precedences)
			}
			r := registryOf(dialectPrecedences)
			bindings, err := r.Resolve(markup.ModeHTML, markup.NewText("x"))
			if err != nil {
				return false
			}
			return len(bindings) == total
		},
		genDialects(),
	))

	properties.Property("resolution is deterministic", prop.ForAll(
		func(dialectPrecedences [][]int) bool {
			r := registryOf(dialectPrecedences)
			first, err := r.Resolve(markup.ModeHTML, markup.NewText("x"))
			if err != nil {
				return false
			}
			second, err := r.Resolve(markup.ModeHTML, markup.NewText("x"))
			if err != nil {
				return false
			}
			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		genDialects(),
	))

	properties.TestingRun(t)
}
