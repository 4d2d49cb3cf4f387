package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	fields, err := parseFields([]string{"amount=100.00", "signed_field_names=amount,currency", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"amount":             "100.00",
		"signed_field_names": "amount,currency",
		"empty":              "",
	}, fields)

	_, err = parseFields([]string{"novalue"})
	assert.Error(t, err)

	_, err = parseFields([]string{"=1"})
	assert.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	root := NewRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "ibe dev")
}

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, path := range [][]string{
		{"serve"},
		{"session", "seed"},
		{"session", "token"},
		{"session", "refresh"},
		{"session", "clear"},
		{"session", "status"},
		{"session", "operator-token"},
		{"sign"},
		{"checkout"},
		{"promo", "check"},
		{"fetch"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
