package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

func TestSummaryReader_Summaries(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	acme := createShop(t, db, "Acme")
	createShop(t, db, "Beta")

	for i := 0; i < 7; i++ {
		f := ingest.NewIngestedFile(acme.ID, fmt.Sprintf("f%d.csv", i), "", 1, fmt.Sprintf("h%d", i))
		_, err := repos.Files.Create(ctx, f)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := repos.Orders.Upsert(ctx, &ingest.Order{SourceID: acme.ID, ExternalID: "1", Currency: "USD"})
	require.NoError(t, err)
	_, err = repos.Customers.Upsert(ctx, &ingest.Customer{SourceID: acme.ID, ExternalID: "1", Email: "a@x.io"})
	require.NoError(t, err)

	summaries, err := repos.Summaries.Summaries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	a := summaries[0]
	assert.Equal(t, "Acme", a.Name)
	assert.Equal(t, int64(1), a.OrderCount)
	assert.Equal(t, int64(1), a.CustomerCount)
	assert.Equal(t, int64(7), a.FileCount)
	require.Len(t, a.RecentFiles, 5)
	assert.Equal(t, "f6.csv", a.RecentFiles[0].Filename, "newest first")

	b := summaries[1]
	assert.Equal(t, "Beta", b.Name)
	assert.Zero(t, b.OrderCount)
	assert.NotNil(t, b.RecentFiles)
	assert.Empty(t, b.RecentFiles)
}
