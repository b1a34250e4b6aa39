package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "text", Output: &buf})

	log.Info("template parsed", "template", "page.html", "events", 12)
	out := buf.String()
	assert.Contains(t, out, "template parsed")
	assert.Contains(t, out, "template=page.html")
	assert.Contains(t, out, "events=12")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "info", Format: "json", Output: &buf})

	log.Info("cache hit", "key", "page.html|html")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "cache hit", record["msg"])
	assert.Equal(t, "page.html|html", record["key"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "warn", Format: "text", Output: &buf})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")
	log.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 2, strings.Count(out, "shown"))
}

func TestWithAndWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: "debug", Format: "text", Output: &buf})

	child := log.WithComponent("engine").With("template", "page.html")
	child.Debug("pass started")

	out := buf.String()
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "template=page.html")

	// the parent logger is unaffected
	buf.Reset()
	log.Debug("plain")
	assert.NotContains(t, buf.String(), "component=")
}

func TestNilConfigUsesDefaults(t *testing.T) {
	assert.NotPanics(t, func() {
		log := New(nil)
		_ = log
	})
}

func TestNopLoggerDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		log := Nop()
		log.Debug("a")
		log.Info("b", "k", "v")
		log.Warn("c")
		log.Error("d")
		log.With("k", "v").WithComponent("x").Info("e")
	})
}
