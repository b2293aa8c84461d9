package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE vhc_aliases (
			job_id TEXT NOT NULL,
			display_id TEXT NOT NULL,
			canonical_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (job_id, display_id)
		);
	`)
	require.NoError(t, err)
	return db
}

func TestAliasRepositoryUpsertAndMap(t *testing.T) {
	repo := NewAliasRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Upsert("job-1", "brakes-front_pads-0", "chk-1"))
	require.NoError(t, repo.Upsert("job-1", "wheels___tyres-n_s_f_tyre-2", "chk-2"))
	require.NoError(t, repo.Upsert("job-2", "brakes-front_pads-0", "chk-9"))

	aliases, err := repo.MapByJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"brakes-front_pads-0":         "chk-1",
		"wheels___tyres-n_s_f_tyre-2": "chk-2",
	}, aliases)
}

func TestAliasRepositoryUpsertRetargets(t *testing.T) {
	repo := NewAliasRepository(newTestDB(t), zap.NewNop())

	require.NoError(t, repo.Upsert("job-1", "brakes-front_pads-0", "chk-1"))
	require.NoError(t, repo.Upsert("job-1", "brakes-front_pads-0", "chk-2"))

	aliases, err := repo.MapByJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, "chk-2", aliases["brakes-front_pads-0"])
}

func TestAliasRepositoryEmptyJob(t *testing.T) {
	repo := NewAliasRepository(newTestDB(t), zap.NewNop())

	aliases, err := repo.MapByJob("job-none")
	require.NoError(t, err)
	assert.Empty(t, aliases)
}
