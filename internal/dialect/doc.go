// Package dialect defines the processor-facing API of the engine: dialects
// as named bundles of processors, the match/precedence metadata that binds a
// processor to events, the registry that resolves the ordered processor
// chain for an event, and the structure handler through which a processor
// declares structural effects without ever touching the event container
// directly.
package dialect
