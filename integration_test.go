package pgwrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linsomniac/pgwrap"
	"github.com/linsomniac/pgwrap/pgwraptest"
)

// seedIndexes creates the classic fixture: a hundred rows 0..99.
func seedIndexes(ctx context.Context, t *testing.T, db *pgwrap.DB) {
	t.Helper()
	_, err := db.Exec(ctx, "CREATE TABLE indexes ( value INTEGER )")
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, db.Insert(ctx, "indexes", "value", i))
	}
	require.NoError(t, db.Commit(ctx))
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
	ctx := context.Background()
	db := pgwraptest.StartPostgres(ctx, t)
	seedIndexes(ctx, t, db)

	t.Run("Should count seeded rows", func(t *testing.T) {
		row, err := db.QueryOne(ctx, "SELECT COUNT(*) FROM indexes")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.EqualValues(t, 100, row.Index(0))
	})

	t.Run("Should read rows sequentially by index", func(t *testing.T) {
		rows, err := db.Query(ctx, "SELECT * FROM indexes ORDER BY value")
		require.NoError(t, err)
		defer rows.Close()
		for i := 0; i < 3; i++ {
			row, err := rows.At(i)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.EqualValues(t, i, row.Get("value"))
		}
		_, err = rows.At(1)
		assert.ErrorIs(t, err, pgwrap.ErrNotSequential)
	})

	t.Run("Should return one row or nil from QueryOne", func(t *testing.T) {
		row, err := db.QueryOne(ctx, "SELECT * FROM indexes WHERE value = $1", 10)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.EqualValues(t, 10, row.Index(0))

		row, err = db.QueryOne(ctx, "SELECT * FROM indexes WHERE value = $1", 1010)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("Should insert equivalently via keyword pairs and maps", func(t *testing.T) {
		for i := 200; i < 250; i++ {
			require.NoError(t, db.Insert(ctx, "indexes", "value", i))
		}
		for i := 300; i < 369; i++ {
			require.NoError(t, db.DictInsert(ctx, "indexes", map[string]any{"value": i}))
		}
		require.NoError(t, db.Commit(ctx))

		row, err := db.QueryOne(ctx,
			"SELECT COUNT(*) FROM indexes WHERE value >= 200 AND value < 300")
		require.NoError(t, err)
		assert.EqualValues(t, 50, row.Index(0))
		row, err = db.QueryOne(ctx,
			"SELECT COUNT(*) FROM indexes WHERE value >= 300 AND value < 400")
		require.NoError(t, err)
		assert.EqualValues(t, 69, row.Index(0))
	})

	t.Run("Should discard uncommitted work on rollback", func(t *testing.T) {
		require.NoError(t, db.Insert(ctx, "indexes", "value", 9999))
		require.NoError(t, db.Rollback(ctx))
		row, err := db.QueryOne(ctx, "SELECT * FROM indexes WHERE value = $1", 9999)
		require.NoError(t, err)
		assert.Nil(t, row)
		require.NoError(t, db.Rollback(ctx))
	})

	t.Run("Should scan rows into structs", func(t *testing.T) {
		type indexRow struct {
			Value int `db:"value"`
		}
		var first indexRow
		found, err := db.Get(ctx, &first, "SELECT value FROM indexes ORDER BY value LIMIT 1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 0, first.Value)

		rows, err := db.Query(ctx, "SELECT value FROM indexes ORDER BY value LIMIT 2")
		require.NoError(t, err)
		require.True(t, rows.Next())
		var scanned indexRow
		require.NoError(t, rows.Cur().ScanStruct(&scanned))
		assert.Equal(t, 0, scanned.Value)
		rows.Close()
		require.NoError(t, db.Rollback(ctx))
	})

	t.Run("Should report a healthy session", func(t *testing.T) {
		assert.NoError(t, db.HealthCheck(ctx))
	})
}
