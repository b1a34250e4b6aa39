// Package resolve maps logical template names to template source bytes. A
// resolver chain tries each resolver in order; the first one that recognizes
// the name wins. Resolvers are read-only collaborators: parsing, caching and
// processing happen elsewhere.
package resolve

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/loomkit/loom/internal/errors"
)

// ErrNotResolved is returned by a resolver that does not know the requested
// template name, letting the chain fall through to the next resolver.
var ErrNotResolved = stderrors.New("template name not resolved")

// Resolver maps one logical template name to source bytes.
type Resolver interface {
	// Name identifies the resolver; it participates in the cache-key
	// contract so templates resolved by different resolvers never collide.
	Name() string
	// Resolve returns the template source, or ErrNotResolved.
	Resolve(name string) ([]byte, error)
}

// Chain tries resolvers in order and returns the first hit.
type Chain []Resolver

// Name returns the combined resolver identity for cache keying.
func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, r := range c {
		names[i] = r.Name()
	}
	return strings.Join(names, "+")
}

// Resolve walks the chain. Only ErrNotResolved falls through; any other
// failure aborts resolution.
func (c Chain) Resolve(name string) ([]byte, error) {
	for _, r := range c {
		src, err := r.Resolve(name)
		if err == nil {
			return src, nil
		}
		if !stderrors.Is(err, ErrNotResolved) {
			return nil, err
		}
	}
	return nil, errors.Wrap(errors.KindResolve, ErrNotResolved, "template %q", name)
}

// FileResolver resolves template names as paths below a root directory,
// optionally decoding the bytes from a named source charset to UTF-8.
type FileResolver struct {
	root     string
	encoding string
}

// NewFileResolver creates a file resolver. encoding is an IANA charset name
// ("iso-8859-1", "windows-1252", ...); empty or "utf-8" means no decoding.
func NewFileResolver(root, encoding string) *FileResolver {
	if strings.EqualFold(encoding, "utf-8") {
		encoding = ""
	}
	return &FileResolver{root: root, encoding: encoding}
}

// Name identifies the resolver for cache keying.
func (r *FileResolver) Name() string {
	return "file:" + r.root
}

// Resolve reads the named template file below the root. Names escaping the
// root are rejected; a missing file falls through as ErrNotResolved.
func (r *FileResolver) Resolve(name string) ([]byte, error) {
	path := filepath.Join(r.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(r.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("template name %q escapes resolver root %q", name, r.root)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotResolved
		}
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if r.encoding != "" {
		enc, err := htmlindex.Get(r.encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown template source encoding %q: %w", r.encoding, err)
		}
		reader = transform.NewReader(f, enc.NewDecoder())
	}
	return io.ReadAll(reader)
}

// StringResolver resolves template names from an in-memory map. Useful for
// tests and for programmatically assembled templates.
type StringResolver map[string]string

// Name identifies the resolver for cache keying.
func (r StringResolver) Name() string { return "string" }

// Resolve returns the mapped source or ErrNotResolved.
func (r StringResolver) Resolve(name string) ([]byte, error) {
	if src, ok := r[name]; ok {
		return []byte(src), nil
	}
	return nil, ErrNotResolved
}
