package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_PlainOutsideTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, tui.IsTerminal(&buf))

	out, err := tui.NewRenderer(&buf)("# Title\n\nbody")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", out)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.NotContains(t, buf.String(), "\x1b[", "no escapes when not a terminal")
}
