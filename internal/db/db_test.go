package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/app?sslmode=require", MigrateURL("postgres://u:p@db:5432/app?sslmode=require"))
	assert.Equal(t, "pgx5://u@db/app", MigrateURL("postgresql://u@db/app"))
	assert.Equal(t, "pgx5://already", MigrateURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups, downs := 0, 0
	for _, n := range names {
		switch {
		case strings.HasSuffix(n, ".up.sql"):
			ups++
		case strings.HasSuffix(n, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSchemaCarriesInvariantConstraints(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(b)

	assert.Contains(t, sql, "bids_one_accepted_per_gig ON bids(gig_id) WHERE status = 'accepted'")
	assert.Contains(t, sql, "orders_paid_before_progress")
	assert.Contains(t, sql, "order_id    TEXT NOT NULL UNIQUE")
	assert.Contains(t, sql, "CHECK (wallet_balance >= 0)")
}
