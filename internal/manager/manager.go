// Package manager orchestrates template processing: it resolves template
// names to source, parses them once, freezes and caches the parse result,
// and drives the processing engine against a private working copy per run.
// The cached value is immutable by type, so one parse can serve any number
// of concurrent runs; whenever no processor could touch a template, the
// cached copy is rendered directly without forking at all.
package manager

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/loomkit/loom/internal/cache"
	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/errors"
	"github.com/loomkit/loom/internal/logging"
	"github.com/loomkit/loom/internal/markup"
	"github.com/loomkit/loom/internal/resolve"
)

// Parser is the lexer collaborator: it turns template source into events.
// Implementations must return containers that the manager exclusively owns.
type Parser interface {
	Parse(template string, src []byte, mode markup.TemplateMode) (*markup.Markup, error)
	ParseFragment(template string, text string, mode markup.TemplateMode) (*markup.Markup, error)
}

// configSeq distinguishes manager instances in cache keys, so two managers
// sharing one cache can never serve each other's parse results.
var configSeq int64

// Options configures a Manager. Zero fields get working defaults; Resolver
// and Parser are required.
type Options struct {
	Resolver resolve.Resolver
	Parser   Parser
	Registry *dialect.Registry
	Cache    *cache.TemplateCache
	Logger   logging.Logger
	Mode     markup.TemplateMode
	Engine   []engine.Option
}

// Manager obtains, caches and processes templates.
type Manager struct {
	resolver resolve.Resolver
	parser   Parser
	registry *dialect.Registry
	cache    *cache.TemplateCache
	engine   *engine.Engine
	log      logging.Logger
	mode     markup.TemplateMode
	configID string

	building sync.Map // cache key -> *sync.Mutex
}

// New creates a Manager.
func New(opts Options) (*Manager, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("manager: a resolver is required")
	}
	if opts.Parser == nil {
		return nil, fmt.Errorf("manager: a parser is required")
	}
	registry := opts.Registry
	if registry == nil {
		registry = dialect.NewRegistry()
	}
	templateCache := opts.Cache
	if templateCache == nil {
		templateCache = cache.New(0, 0)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	engineOpts := append([]engine.Option{engine.WithLogger(log.WithComponent("engine"))}, opts.Engine...)
	return &Manager{
		resolver: opts.Resolver,
		parser:   opts.Parser,
		registry: registry,
		cache:    templateCache,
		engine:   engine.New(registry, engineOpts...),
		log:      log.WithComponent("manager"),
		mode:     opts.Mode,
		configID: fmt.Sprintf("cfg%d", atomic.AddInt64(&configSeq, 1)),
	}, nil
}

// Mode returns the manager's template mode.
func (m *Manager) Mode() markup.TemplateMode { return m.mode }

// Registry returns the processor registry the manager processes with.
func (m *Manager) Registry() *dialect.Registry { return m.registry }

// CacheKey is the cache-key contract: template name, mode, fragment
// selectors, owning configuration identity and resolver identity, joined so
// that the template name is a stable prefix for invalidation.
func CacheKey(template string, mode markup.TemplateMode, selectors []string, configID, resolverID string) string {
	return strings.Join([]string{template, mode.String(), strings.Join(selectors, ","), configID, resolverID}, "|")
}

// Get returns the frozen parse result for a template, building and caching
// it on a miss. A per-key lock gives at-most-one-build-per-key: concurrent
// callers of a missing entry wait for the first build instead of repeating
// it.
func (m *Manager) Get(name string) (*markup.Immutable, error) {
	key := CacheKey(name, m.mode, nil, m.configID, m.resolver.Name())

	if frozen, ok := m.cache.Get(key); ok {
		return frozen, nil
	}

	lockAny, _ := m.building.LoadOrStore(key, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	if frozen, ok := m.cache.Get(key); ok {
		return frozen, nil
	}

	frozen, err := m.build(name)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, frozen)
	return frozen, nil
}

func (m *Manager) build(name string) (*markup.Immutable, error) {
	src, err := m.resolver.Resolve(name)
	if err != nil {
		return nil, errors.Wrap(errors.KindResolve, err, "resolving template %q", name)
	}
	parsed, err := m.parser.Parse(name, src, m.mode)
	if err != nil {
		return nil, errors.Wrap(errors.KindParse, err, "parsing template %q", name)
	}
	frozen := markup.Freeze(parsed)
	m.log.Debug("template parsed and frozen", "template", name, "events", frozen.Size())
	return frozen, nil
}

// Process renders a template with the given variables into w. The working
// copy is a private fork of the cached markup; nothing is written to w until
// the whole pass has completed, so a failed run produces no partial output.
func (m *Manager) Process(name string, vars map[string]interface{}, w io.Writer) error {
	frozen, err := m.Get(name)
	if err != nil {
		return err
	}

	if !m.registry.HasProcessors(m.mode) && m.registry.PostProcessorCount(m.mode) == 0 {
		_, err := frozen.WriteTo(w)
		return err
	}

	working := frozen.Fork()
	ctx := dialect.NewContext(name, m.mode, vars)
	if err := m.engine.Process(ctx, working); err != nil {
		return err
	}
	_, err = working.WriteTo(w)
	return err
}

// ProcessToString is Process into a string.
func (m *Manager) ProcessToString(name string, vars map[string]interface{}) (string, error) {
	var sb strings.Builder
	if err := m.Process(name, vars, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParseFragment implements engine.FragmentParser for raw-content expansion:
// fragments parsed at processing time are unique per execution and are
// deliberately never cached.
func (m *Manager) ParseFragment(template string, text string, mode markup.TemplateMode) (*markup.Markup, error) {
	return m.parser.ParseFragment(template, text, mode)
}

// Invalidate drops every cached entry of the named template, across modes
// and selector sets.
func (m *Manager) Invalidate(name string) {
	dropped := m.cache.InvalidatePrefix(name + "|")
	if dropped > 0 {
		m.log.Info("template invalidated", "template", name, "entries", dropped)
	}
}

// InvalidateAll empties the template cache.
func (m *Manager) InvalidateAll() {
	m.cache.InvalidateAll()
	m.log.Info("template cache cleared")
}

// CacheStats returns the cache counters.
func (m *Manager) CacheStats() cache.Stats { return m.cache.Stats() }

var _ engine.FragmentParser = (*Manager)(nil)
