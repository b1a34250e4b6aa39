package resolve

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/text/encoding/charmap"
)

type failingResolver struct{ err error }

func (r failingResolver) Name() string                  { return "failing" }
func (r failingResolver) Resolve(string) ([]byte, error) { return nil, r.err }

func TestStringResolver(t *testing.T) {
	r := StringResolver{"index.html": "<p>hi</p>"}

	src, err := r.Resolve("index.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(src))

	_, err = r.Resolve("missing.html")
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestChainFallsThroughOnNotResolved(t *testing.T) {
	chain := Chain{
		StringResolver{"a.html": "A"},
		StringResolver{"b.html": "B"},
	}

	src, err := chain.Resolve("b.html")
	require.NoError(t, err)
	assert.Equal(t, "B", string(src))

	src, err = chain.Resolve("a.html")
	require.NoError(t, err)
	assert.Equal(t, "A", string(src))

	_, err = chain.Resolve("c.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestChainStopsOnRealFailure(t *testing.T) {
	boom := stderrors.New("disk on fire")
	chain := Chain{
		failingResolver{err: boom},
		StringResolver{"a.html": "never reached"},
	}

	_, err := chain.Resolve("a.html")
	assert.ErrorIs(t, err, boom)
}

func TestChainFirstHitWins(t *testing.T) {
	chain := Chain{
		StringResolver{"a.html": "first"},
		StringResolver{"a.html": "second"},
	}
	src, err := chain.Resolve("a.html")
	require.NoError(t, err)
	assert.Equal(t, "first", string(src))
}

func TestChainName(t *testing.T) {
	chain := Chain{StringResolver{}, NewFileResolver("/tmp/t", "")}
	assert.Equal(t, "string+file:/tmp/t", chain.Name())
}

func TestFileResolver(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "home.html"), []byte("<h1>home</h1>"), 0o644))

	r := NewFileResolver(root, "")
	src, err := r.Resolve("pages/home.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>home</h1>", string(src))

	_, err = r.Resolve("pages/missing.html")
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestFileResolverRejectsRootEscape(t *testing.T) {
	root := t.TempDir()
	r := NewFileResolver(root, "")

	for _, name := range []string{"../secrets.txt", "../../etc/passwd", "a/../../outside"} {
		_, err := r.Resolve(name)
		require.Error(t, err, name)
		assert.NotErrorIs(t, err, ErrNotResolved, name)
		assert.Contains(t, err.Error(), "escapes", name)
	}
}

func TestFileResolverDecodesSourceEncoding(t *testing.T) {
	root := t.TempDir()

	// "café" encoded as ISO-8859-1: é is a single 0xE9 byte
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("<p>café</p>"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "t.html"), encoded, 0o644))

	r := NewFileResolver(root, "iso-8859-1")
	src, err := r.Resolve("t.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", string(src))
}

func TestFileResolverRejectsUnknownEncoding(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "t.html"), []byte("x"), 0o644))

	r := NewFileResolver(root, "no-such-charset")
	_, err := r.Resolve("t.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-charset")
}

func TestFileResolverUTF8MeansNoDecoding(t *testing.T) {
	r := NewFileResolver("/tmp", "UTF-8")
	assert.Equal(t, "file:/tmp", r.Name())
}
