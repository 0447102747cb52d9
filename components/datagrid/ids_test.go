package datagrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceGeneratorSkipsExistingIDs(t *testing.T) {
	gen := NewSequenceGenerator("row-")
	existing := map[string]struct{}{"row-7": {}, "row-x": {}, "user-99": {}}
	id, err := gen.NextID(existing)
	require.NoError(t, err)
	assert.Equal(t, "row-8", id)

	id, err = gen.NextID(map[string]struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "row-9", id, "ids are never reused after deletes")
}

func TestUUIDGeneratorPrefix(t *testing.T) {
	id, err := UUIDGenerator{Prefix: "u-"}.NextID(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "u-"))
	assert.Len(t, id, len("u-")+36)
}

func TestEngineRejectsCollidingGenerator(t *testing.T) {
	engine := NewEngine(EngineOptions{IDGenerator: IDGeneratorFunc(func(map[string]struct{}) (string, error) {
		return "1", nil
	})})
	_, _, err := engine.AddRow(peopleRows(), Row{"name": "x"})
	assert.Error(t, err)
}
