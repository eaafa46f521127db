package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Buffer: &buf, Level: WarnLevel, Type: TypeText})

	l.Info("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "k=1")
}

func TestJSONWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Buffer: &buf, Level: DebugLevel, Type: TypeJSON}).With("component", "table")

	l.Debug("render")

	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"component":"table"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, DefaultLevel, ParseLevel("verbose"))
}
