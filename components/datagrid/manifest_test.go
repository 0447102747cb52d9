package datagrid

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
version: "1"
name: crm
grids:
  - code: contacts
    name: Contacts
    page_size: 5
    columns:
      - key: name
        label: Name
        sortable: true
        required: true
      - key: score
        label: Score
        value_type: number
    rows:
      - id: c1
        name: Ann
        score: 7
      - id: c2
        name: Bob
        score: "3"
  - code: leads
    columns:
      - key: email
    remote:
      url: https://crm.example.com/leads
      rows_path: data
      rate_per_second: 2
`

func TestDecodeManifest(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, ManifestVersion, doc.Version)
	require.Len(t, doc.Grids, 2)

	contacts, ok := doc.Grid("contacts")
	require.True(t, ok)
	assert.Equal(t, 5, contacts.PageSize)
	assert.Equal(t, ValueNumber, contacts.Columns[1].ValueType)
	assert.Len(t, contacts.Rows, 2)

	leads, ok := doc.Grid("leads")
	require.True(t, ok)
	assert.Equal(t, "leads", leads.Name, "name defaults to code")
	require.NotNil(t, leads.Remote)
	assert.Equal(t, "data", leads.Remote.RowsPath)
	assert.Equal(t, 2.0, leads.Remote.RatePerSecond)
}

func TestDecodeManifestRejectsProblems(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"version":         "version: \"2\"\ngrids: []\n",
		"unknown field":   "version: \"1\"\ngrids:\n  - code: a\n    colour: red\n",
		"duplicate code":  "grids:\n  - code: a\n  - code: a\n",
		"duplicate row":   "grids:\n  - code: a\n    rows:\n      - id: x\n      - id: x\n",
		"duplicate col":   "grids:\n  - code: a\n    columns:\n      - key: k\n      - key: k\n",
		"bad type":        "grids:\n  - code: a\n    columns:\n      - key: k\n        value_type: money\n",
		"rows and remote": "grids:\n  - code: a\n    rows:\n      - id: x\n    remote:\n      url: http://x\n",
	}
	for name, body := range cases {
		_, err := DecodeManifest(strings.NewReader(body))
		assert.Error(t, err, name)
	}
}

func TestManifestApplyRegistersGrids(t *testing.T) {
	doc, err := DecodeManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	svc := NewService(Options{})
	require.NoError(t, doc.Apply(context.Background(), svc))

	result, err := svc.Query(context.Background(), "contacts", Query{SortKey: "score"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c1"}, rowIDs(result.Rows))
	assert.Equal(t, 5, result.Page.PageSize)

	rows, err := svc.Rows(context.Background(), "leads")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadManifestAndEncodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))
	doc, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))
	again, err := DecodeManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(doc.Grids), len(again.Grids))
	assert.Equal(t, doc.Grids[0].Columns, again.Grids[0].Columns)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
