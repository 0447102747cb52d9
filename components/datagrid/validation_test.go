package datagrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRowRequiresFields(t *testing.T) {
	cols := DemoUsersDefinition().Columns
	err := ValidateRow(cols, Row{"id": "u1", "name": "  "})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := []string{}
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "email"}, fields)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateRowChecksTypes(t *testing.T) {
	cols := []Column{
		{Key: "name", Required: true},
		{Key: "salary", ValueType: ValueNumber},
		{Key: "active", ValueType: ValueBoolean},
	}
	require.NoError(t, ValidateRow(cols, Row{"id": "1", "name": "Bob", "salary": float64(10), "active": true, "extra": []any{1}}))

	err := ValidateRow(cols, Row{"id": "1", "name": "Bob", "salary": "ten"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.NotEmpty(t, verr.Fields)
	assert.Equal(t, "salary", verr.Fields[0].Field)
}

func TestValidateRowRestrictsOptions(t *testing.T) {
	cols := []Column{{Key: "dept", Options: []Option{{Value: "Sales"}, {Value: "HR"}}}}
	assert.NoError(t, ValidateRow(cols, Row{"id": "1", "dept": "HR"}))
	assert.NoError(t, ValidateRow(cols, Row{"id": "1", "dept": ""}))
	assert.ErrorIs(t, ValidateRow(cols, Row{"id": "1", "dept": "Legal"}), ErrValidation)
}

func TestJSONSchemaValidatorCachesByCode(t *testing.T) {
	v := NewJSONSchemaValidator()
	def := GridDefinition{Code: "people", Columns: []Column{{Key: "age", ValueType: ValueNumber}}}
	require.NoError(t, v.Validate(def, Row{"id": "1", "age": float64(3)}))
	assert.Len(t, v.compiled, 1)

	v.InvalidateSchema("people")
	assert.Empty(t, v.compiled)
}
