package jlink

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScriptPreservesOrder(t *testing.T) {
	commands := []string{"r", `loadfile "/tmp/a.hex"`, `loadbin "/tmp/b.bin" 0x08000000`, "r", "g", "q"}

	s, err := BuildScript(commands)
	require.NoError(t, err)
	defer s.Release()

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "r\nloadfile \"/tmp/a.hex\"\nloadbin \"/tmp/b.bin\" 0x08000000\nr\ng\nq", string(data))
	assert.Equal(t, commands, s.Lines())
}

func TestBuildScriptUniquePaths(t *testing.T) {
	a, err := BuildScript([]string{"q"})
	require.NoError(t, err)
	defer a.Release()
	b, err := BuildScript([]string{"q"})
	require.NoError(t, err)
	defer b.Release()

	assert.NotEqual(t, a.Path(), b.Path())
}

func TestScriptReleaseDeletesFile(t *testing.T) {
	s, err := BuildScript([]string{"connect", "q"})
	require.NoError(t, err)

	require.NoError(t, s.Release())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "script file should be gone, stat err=%v", err)

	assert.NoError(t, s.Release(), "second release is a no-op")
}

func TestScriptLinesIsACopy(t *testing.T) {
	s, err := BuildScript([]string{"r", "q"})
	require.NoError(t, err)
	defer s.Release()

	lines := s.Lines()
	lines[0] = "erase"
	assert.Equal(t, []string{"r", "q"}, s.Lines())
}
