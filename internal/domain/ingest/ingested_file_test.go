package ingest

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestedFileLifecycle(t *testing.T) {
	f := NewIngestedFile(uuid.New(), "Acme.csv", "/tmp/Acme.csv", 42, "abc")
	assert.Equal(t, FileStatusProcessing, f.Status)
	assert.False(t, f.IsCompleted())

	t.Run("fail then restart", func(t *testing.T) {
		f.Fail("boom")
		assert.Equal(t, FileStatusFailed, f.Status)
		require.NoError(t, f.StartProcessing())
		assert.Equal(t, FileStatusProcessing, f.Status)
		assert.Empty(t, f.ErrorMessage)
	})

	t.Run("complete records counts", func(t *testing.T) {
		now := time.Now()
		f.Complete(&IngestionSummary{TotalRows: 5, Inserted: 3, Updated: 1, Errored: 1}, now)
		assert.True(t, f.IsCompleted())
		assert.Equal(t, "1 processing errors", f.ErrorMessage)
		require.NotNil(t, f.ProcessedAt)

		stored := f.StoredSummary()
		assert.Equal(t, 5, stored.TotalRows)
		assert.Equal(t, 3, stored.Inserted)
		assert.Equal(t, 1, stored.Updated)
		assert.Equal(t, 1, stored.Errored)
		assert.Empty(t, stored.Errors)
		assert.True(t, stored.Skipped)
	})

	t.Run("completed file cannot restart", func(t *testing.T) {
		assert.Error(t, f.StartProcessing())
	})

	assert.True(t, FileStatusFailed.IsValid())
	assert.False(t, FileStatus("done").IsValid())
}

func TestFileError(t *testing.T) {
	cause := errors.New("permission denied")
	err := fmt.Errorf("ingest: %w", NewFileError(FileErrorAccess, "/tmp/a.csv", cause))

	assert.ErrorIs(t, err, ErrFileAccess)
	assert.NotErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/tmp/a.csv")
	assert.True(t, IsFatal(err))

	assert.True(t, IsFatal(fmt.Errorf("wrap: %w", ErrPersistenceUnavailable)))
	assert.False(t, IsFatal(errors.New("row failed")))
}

func TestWriteResult(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, WriteCreated, Created(id).Kind)
	assert.Equal(t, "updated", Updated(id).Kind.String())

	r := ConflictOn(ConflictFingerprint)
	assert.True(t, r.IsConflict())
	assert.Equal(t, ConflictFingerprint, r.Conflict)
}
