package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_RejectsBadDate(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--date", "2025-13-45"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYYMMDD")
}

func TestRootCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "--date")
	assert.Contains(t, out.String(), "runs")
}
