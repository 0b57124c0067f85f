//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/FBK-Manuel/wearehfg/pkg/database"
	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestStateRepository_Integration_RoundTrip(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, database.RunMigrations(ctx, pool, Migrations(), logger))
	// A second run is a no-op.
	require.NoError(t, database.RunMigrations(ctx, pool, Migrations(), logger))

	repo := NewStateRepository(pool, time.Hour, logger)

	_, err := repo.Load(ctx, "cart:it")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Save(ctx, "cart:it", []byte(`[{"id":1,"quantity":2}]`)))
	require.NoError(t, repo.Save(ctx, "cart:it", []byte(`[{"id":1,"quantity":3}]`)))

	got, err := repo.Load(ctx, "cart:it")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"quantity":3}]`, string(got))

	repo.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = repo.Load(ctx, "cart:it")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "expired rows are invisible")

	n, err := repo.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
