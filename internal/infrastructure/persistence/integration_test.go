//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/migration"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a disposable Postgres, applies the embedded migrations and
// returns a GORM handle configured like production.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db
}

func TestPostgres_ConflictsAreReportedNotRaised(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	keeper, err := repos.Shops.FindOrCreate(ctx, "Acme")
	require.NoError(t, err)
	loser, err := repos.Shops.FindOrCreate(ctx, "2025-08-03T23-20-16-775Z_Acme")
	require.NoError(t, err)

	a := &ingest.Order{SourceID: keeper.ID, ExternalID: "1001", Currency: "USD"}
	b := &ingest.Order{SourceID: loser.ID, ExternalID: "1001", Currency: "USD"}
	for _, o := range []*ingest.Order{a, b} {
		_, err := repos.Orders.Upsert(ctx, o)
		require.NoError(t, err)
	}

	res, err := repos.Orders.Reassign(ctx, b.ID, keeper.ID)
	require.NoError(t, err)
	assert.Equal(t, ingest.ConflictExternalOrderID, res.Conflict)

	res, err = repos.Shops.Rename(ctx, loser.ID, "Acme")
	require.NoError(t, err)
	assert.Equal(t, ingest.ConflictSourceName, res.Conflict)

	f := ingest.NewIngestedFile(keeper.ID, "a.csv", "", 1, "abc")
	_, err = repos.Files.Create(ctx, f)
	require.NoError(t, err)
	res, err = repos.Files.Create(ctx, ingest.NewIngestedFile(keeper.ID, "a.csv", "", 1, "abc"))
	require.NoError(t, err)
	assert.Equal(t, ingest.ConflictFingerprint, res.Conflict)
}

func TestPostgres_TransactionRollbackAfterConflict(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewRepositories(db)
	ctx := context.Background()

	shop, err := repos.Shops.FindOrCreate(ctx, "Acme")
	require.NoError(t, err)

	err = repos.Transactor.WithinTx(ctx, func(store ingest.RowStore) error {
		_, err := store.Orders().Upsert(ctx, &ingest.Order{SourceID: shop.ID, ExternalID: "1", Currency: "USD"})
		if err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	summaries, err := repos.Summaries.Summaries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].OrderCount)
}
