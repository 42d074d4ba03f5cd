package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

func TestCSVFileRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCSVFileRepository(db)
	ctx := context.Background()
	shop := createShop(t, db, "Acme")

	f := ingest.NewIngestedFile(shop.ID, "acme.csv", "/drop/acme.csv", 120, "deadbeef")
	res, err := repo.Create(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, ingest.WriteCreated, res.Kind)

	res, err = repo.Create(ctx, ingest.NewIngestedFile(shop.ID, "copy.csv", "/drop/copy.csv", 120, "deadbeef"))
	require.NoError(t, err)
	assert.Equal(t, ingest.ConflictFingerprint, res.Conflict)

	f.Complete(&ingest.IngestionSummary{TotalRows: 2, Inserted: 1, Updated: 1}, time.Now())
	require.NoError(t, repo.Save(ctx, f))

	found, err := repo.FindByFingerprint(ctx, shop.ID, "deadbeef")
	require.NoError(t, err)
	assert.True(t, found.IsCompleted())
	assert.Equal(t, 2, found.Total)
	assert.Equal(t, "acme.csv", found.Filename)

	_, err = repo.FindByFingerprint(ctx, uuid.New(), "deadbeef")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCSVFileRepository_Reassign(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCSVFileRepository(db)
	ctx := context.Background()
	keeper := createShop(t, db, "Acme")
	loser := createShop(t, db, "Acme (copy)")

	same := ingest.NewIngestedFile(keeper.ID, "a.csv", "", 1, "h1")
	dup := ingest.NewIngestedFile(loser.ID, "a.csv", "", 1, "h1")
	other := ingest.NewIngestedFile(loser.ID, "b.csv", "", 1, "h2")
	for _, f := range []*ingest.IngestedFile{same, dup, other} {
		_, err := repo.Create(ctx, f)
		require.NoError(t, err)
	}

	res, err := repo.Reassign(ctx, other.ID, keeper.ID)
	require.NoError(t, err)
	assert.Equal(t, ingest.WriteUpdated, res.Kind)

	res, err = repo.Reassign(ctx, dup.ID, keeper.ID)
	require.NoError(t, err)
	assert.True(t, res.IsConflict())
	require.NoError(t, repo.Delete(ctx, dup.ID))

	ids, err := repo.ListIDsBySource(ctx, loser.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestProcessingLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProcessingLogRepository(db)
	ctx := context.Background()
	from := createShop(t, db, "a")
	to := createShop(t, db, "b")

	require.NoError(t, repo.Append(ctx, ingest.NewProcessingLogEntry(&from.ID, ingest.LogLevelError, "failed", map[string]any{"filename": "a.csv"})))
	require.NoError(t, repo.Append(ctx, ingest.NewProcessingLogEntry(nil, ingest.LogLevelInfo, "startup", nil)))

	n, err := repo.ReassignSource(ctx, from.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
