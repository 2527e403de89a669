package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sqlbridge")
	assert.Contains(t, out.String(), Version)
	assert.Contains(t, out.String(), Commit)
}

func TestConnect_NoURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	opts := &options{}

	_, err := opts.connect(t.Context())
	assert.ErrorContains(t, err, "no database URL")
}
