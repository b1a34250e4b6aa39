package cmd

import (
	"github.com/loomkit/loom/internal/cache"
	"github.com/loomkit/loom/internal/config"
	"github.com/loomkit/loom/internal/dialect"
	"github.com/loomkit/loom/internal/dialects/basic"
	"github.com/loomkit/loom/internal/engine"
	"github.com/loomkit/loom/internal/htmlparse"
	"github.com/loomkit/loom/internal/logging"
	"github.com/loomkit/loom/internal/manager"
	"github.com/loomkit/loom/internal/resolve"
)

// buildManager wires the engine stack from configuration: file resolution
// below the template root, the default parser, the basic dialect and the
// template cache. The raw-content expander needs the manager as its fragment
// parser while the manager needs the registry the dialect registers into, so
// registration happens after New.
func buildManager(cfg *config.Config, log logging.Logger) (*manager.Manager, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	registry := dialect.NewRegistry()
	mgr, err := manager.New(manager.Options{
		Resolver: resolve.Chain{resolve.NewFileResolver(cfg.Templates.Root, cfg.Templates.Encoding)},
		Parser:   htmlparse.New(),
		Registry: registry,
		Cache:    cache.New(cfg.Cache.MaxEvents, cfg.Cache.TTL),
		Logger:   log,
		Mode:     mode,
	})
	if err != nil {
		return nil, err
	}

	expander := engine.NewRawExpander(registry, mgr)
	registry.Register(basic.New(cfg.Dialect.Prefix, expander))
	return mgr, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	return logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}
