package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSpreadsheetRefEditURL(t *testing.T) {
	ref, err := ResolveSpreadsheetRef("https://docs.google.com/spreadsheets/d/12I3l5W2CBLvuyMpSnau9NiHBMpmIeptQTcP6vUjY-ls/edit?usp=sharing")
	require.NoError(t, err)
	assert.Equal(t, "12I3l5W2CBLvuyMpSnau9NiHBMpmIeptQTcP6vUjY-ls", ref.ID)
	assert.False(t, ref.Published)
}

func TestResolveSpreadsheetRefBareEditURL(t *testing.T) {
	ref, err := ResolveSpreadsheetRef("https://docs.google.com/spreadsheets/d/abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", ref.ID)
}

func TestResolveSpreadsheetRefPublishedURL(t *testing.T) {
	ref, err := ResolveSpreadsheetRef("https://docs.google.com/spreadsheets/d/e/2PACX-1vABCDEF/pubhtml")
	require.NoError(t, err)
	assert.True(t, ref.Published)
	assert.Equal(t, "2PACX-1vABCDEF", ref.ID)
}

func TestResolveSpreadsheetRefPublishedURLNotMistakenForEdit(t *testing.T) {
	// The published path contains "/d/e/"; the literal "e" segment must
	// never be taken as a document ID.
	ref, err := ResolveSpreadsheetRef("https://docs.google.com/spreadsheets/d/e/2PACX-1vXYZ/pub?output=csv")
	require.NoError(t, err)
	assert.True(t, ref.Published)
	assert.NotEqual(t, "e", ref.ID)
	assert.Equal(t, "2PACX-1vXYZ", ref.ID)
}

func TestResolveSpreadsheetRefUnrecognized(t *testing.T) {
	_, err := ResolveSpreadsheetRef("https://example.com/not-a-sheet")
	assert.Error(t, err)
}

func TestExportCSVURL(t *testing.T) {
	ref := SpreadsheetRef{ID: "abc123"}
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/export?format=csv", ref.ExportCSVURL())
}
