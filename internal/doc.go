// Package internal contains the core implementation packages for loom.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the loom template engine and CLI.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - markup: the template event model, mutable containers and frozen views
//   - dialect: processor dialects, the registry and the structure handler
//   - engine: the single-pass processing loop and raw-content expansion
//   - manager: template orchestration, cache keying and working copies
//   - htmlparse: the lexer turning template source into events
//   - resolve: template name resolution with source charset decoding
//   - cache: the frozen-markup cache with LRU eviction and TTL expiry
//   - watch: file system monitoring with debounced cache invalidation
//   - serve: the development preview server with websocket live reload
//   - config: configuration management with validation
//   - logging: structured logging on log/slog
//   - errors: the typed processing errors shared by every stage
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - Manager resolves, parses and caches templates, and owns the engine
//   - Engine consumes the dialect registry and drives processor chains
//   - Processors declare structural effects on the structure handler only
//   - Watcher maps file events to template names and invalidates the cache
//   - Serve renders templates per request and pushes reloads to browsers
//
// Cached parse results are immutable by type: every processing run works on
// a private fork, so an arbitrary number of concurrent runs can share one
// parse without locking.
//
// For detailed documentation, see the individual package documentation.
package internal
