package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/chronolog/internal/model"
)

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}

func TestParseTimeFlag(t *testing.T) {
	ts, err := parseTimeFlag("2026-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), ts.UTC())

	ts, err = parseTimeFlag("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	_, err = parseTimeFlag("yesterday")
	assert.Error(t, err)
}

func TestParseStatusFlag(t *testing.T) {
	st, err := parseStatusFlag("active")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, st)

	st, err = parseStatusFlag("all")
	require.NoError(t, err)
	assert.Equal(t, model.Status(""), st)

	_, err = parseStatusFlag("deleted")
	assert.Error(t, err)
}

func TestParseProjectID(t *testing.T) {
	id, err := parseProjectID("7")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectID(7), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseProjectID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand()

	want := []string{"project", "task", "start", "stop", "status", "log", "add", "tag", "repair"}
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
}
