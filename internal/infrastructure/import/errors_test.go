package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowError(t *testing.T) {
	err := NewRowError(3, "Id", ErrCodeImportRequiredField, "field 'Id' is required")
	assert.Equal(t, "row 3, column 'Id': field 'Id' is required", err.Error())

	err = NewRowError(7, "", ErrCodeImportPersistence, "write failed")
	assert.Equal(t, "row 7: write failed", err.Error())

	withValue := NewRowErrorWithValue(2, "Total", ErrCodeImportInvalidRange, "too large", "1e13")
	assert.Equal(t, "1e13", withValue.Value)
}

func TestErrorCollection(t *testing.T) {
	t.Run("Defaults and counting", func(t *testing.T) {
		ec := NewErrorCollection(0)
		assert.False(t, ec.HasErrors())
		assert.Empty(t, ec.ErrorSummary())
		assert.NotNil(t, ec.Errors())

		ec.Add(NewRowError(1, "Id", ErrCodeImportRequiredField, "field 'Id' is required"))
		ec.Add(NewRowErrorWithValue(2, "Total", ErrCodeImportInvalidRange, "value exceeds numeric(14,2)", "1000000000000"))

		assert.True(t, ec.HasErrors())
		assert.Len(t, ec.Errors(), 2)
		assert.Equal(t, 2, ec.TotalCount())
		assert.False(t, ec.IsTruncated())
		assert.Equal(t, map[string]int{
			ErrCodeImportRequiredField: 1,
			ErrCodeImportInvalidRange:  1,
		}, ec.ErrorSummary())
	})

	t.Run("Truncates stored entries but keeps total", func(t *testing.T) {
		ec := NewErrorCollection(2)
		for i := 1; i <= 5; i++ {
			ec.Add(NewRowError(i, "", ErrCodeImportPersistence, "failed"))
		}

		assert.Len(t, ec.Errors(), 2)
		assert.Equal(t, 5, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
		assert.Equal(t, map[string]int{ErrCodeImportPersistence: 2}, ec.ErrorSummary(), "summary covers stored entries")
		assert.Equal(t, 1, ec.Errors()[0].Row)
	})
}
