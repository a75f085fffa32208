package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/claimsadj/internal/db"
)

const (
	testPort     = 15433
	testDB       = "claimstest"
	testUser     = "postgres"
	testPassword = "postgres"
)

// startPostgres boots an embedded server for the test. It is opt-in because
// the first run downloads a Postgres binary.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("CLAIMS_PG_TESTS") != "1" {
		t.Skip("set CLAIMS_PG_TESTS=1 to run Postgres integration tests")
	}

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			RuntimePath(t.TempDir()).
			StartTimeout(30 * time.Second),
	)
	require.NoError(t, pg.Start())
	t.Cleanup(func() {
		if err := pg.Stop(); err != nil {
			t.Logf("stop embedded postgres: %v", err)
		}
	})

	dsn := fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)
	pool, err := db.NewPool(context.Background(), dsn, "claimsadj-test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgres_MigrateLoadRead(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	log := zerolog.Nop()

	applied, err := db.ApplyMigrations(ctx, pool, log)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	applied, err = db.ApplyMigrations(ctx, pool, log)
	require.NoError(t, err)
	assert.Equal(t, 0, applied, "migrations are recorded and not re-run")

	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"claim_id": "H-1", "member_id": "M1", "provider_id": "P1", "procedure_codes": ["99213"], "amount": 90, "service_date": "2024-01-05"},
  {"claim_id": "H-2", "member_id": "M1", "provider_id": "P1", "procedure_codes": ["99213", "85025"], "amount": 150, "service_date": "2024-03-10"},
  {"claim_id": "H-3", "member_id": "M2", "procedure_codes": [], "amount": 10}
]`), 0o644))

	res, err := CopyToPostgres(ctx, pool, log, FileSource{Path: path}, path, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsCopied)

	var rowCount int64
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT row_count FROM claims.history_batches WHERE load_batch_id = $1", res.BatchID,
	).Scan(&rowCount))
	assert.Equal(t, int64(3), rowCount)

	claims, err := PGSource{Pool: pool}.Load(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 3)
	assert.Equal(t, "H-1", claims[0].ClaimID)
	assert.Equal(t, []string{"99213", "85025"}, claims[1].ProcedureCodes)
	assert.Equal(t, int64(15000), claims[1].AmountCents)
	assert.Equal(t, "", claims[2].ServiceDate)

	ix := NewIndex(claims)
	assert.Len(t, ix.ForMember("M1"), 2)
}
