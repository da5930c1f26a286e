// Package pgwraptest provides helpers for integration tests that need a
// real PostgreSQL instance. StartPostgres runs a disposable container via
// testcontainers; a .env file can override the image used.
package pgwraptest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/linsomniac/pgwrap"
)

const defaultImage = "postgres:16-alpine"

// Image returns the PostgreSQL container image to use. PGWRAP_TEST_IMAGE
// overrides the default, loaded from the environment or a local .env file.
func Image() string {
	_ = godotenv.Load()
	if img := os.Getenv("PGWRAP_TEST_IMAGE"); img != "" {
		return img
	}
	return defaultImage
}

// StartPostgres runs a PostgreSQL container and returns a connected DB. The
// container and connection are torn down via t.Cleanup.
func StartPostgres(ctx context.Context, t *testing.T) *pgwrap.DB {
	t.Helper()
	pgContainer, err := postgres.Run(ctx,
		Image(),
		postgres.WithDatabase("pgwrap-test"),
		postgres.WithUsername("pgwrap"),
		postgres.WithPassword("pgwrap"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pgContainer.Terminate(terminateCtx); err != nil {
			t.Logf("Warning: failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pgwrap.Connect(ctx, &pgwrap.Config{ConnString: connStr})
	require.NoError(t, err)
	t.Cleanup(func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(closeCtx)
	})
	return db
}
