package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBankInitThenInspectRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")

	initCmd := newBankInitCmd()
	initCmd.SetArgs([]string{path})
	require.NoError(t, initCmd.Execute())

	inspectCmd := newBankInspectCmd()
	inspectCmd.SetArgs([]string{path})
	require.NoError(t, inspectCmd.Execute())
}

func TestBankInspectMissingFileErrors(t *testing.T) {
	inspectCmd := newBankInspectCmd()
	inspectCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, inspectCmd.Execute())
}
