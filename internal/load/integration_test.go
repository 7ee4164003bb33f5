package load_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgen/internal/catalog"
	"github.com/gyeh/claimgen/internal/codemap"
	"github.com/gyeh/claimgen/internal/db"
	"github.com/gyeh/claimgen/internal/load"
	"github.com/gyeh/claimgen/internal/model"
	"github.com/gyeh/claimgen/internal/normalize"
	"github.com/gyeh/claimgen/internal/output"
	"github.com/gyeh/claimgen/internal/synth"
)

const (
	testPort     = 15433
	testDB       = "claimtest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func pgEnabled() bool {
	return os.Getenv("CLAIMGEN_PG_TESTS") == "1"
}

func TestMain(m *testing.M) {
	if !pgEnabled() {
		os.Exit(m.Run())
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB drops the claims schema, applies migrations and returns a pool.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if !pgEnabled() {
		t.Skip("set CLAIMGEN_PG_TESTS=1 to run Postgres tests")
	}
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS claims CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if _, err := db.ApplyMigrations(ctx, pool, zerolog.Nop()); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func writeDataset(t *testing.T, seed int64) (string, *model.Dataset) {
	t.Helper()
	cat, err := catalog.Load("../../testdata/scenarios.json")
	if err != nil {
		t.Fatal(err)
	}
	opts := synth.DefaultOptions()
	opts.Members = 120
	opts.Years = []int{2024, 2025}
	opts.Seed = seed
	g, err := synth.New(opts, cat, codemap.Default(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	res, err := g.Run(nil)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if _, err := output.WriteAll(dir, output.Parquet, res.Dataset); err != nil {
		t.Fatal(err)
	}
	return dir, res.Dataset
}

func countBatches(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var n int64
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM claims.load_batches").Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestMigrations_Idempotent(t *testing.T) {
	pool := setupDB(t)
	n, err := db.ApplyMigrations(context.Background(), pool, zerolog.Nop())
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if n != 0 {
		t.Errorf("second apply ran %d migrations", n)
	}
}

func TestLoad_EndToEnd(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	dir, ds := writeDataset(t, 11)

	summary, err := load.Run(ctx, pool, zerolog.Nop(), load.Options{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.AlreadyLoaded {
		t.Fatal("fresh load reported as already loaded")
	}

	want := ds.RowCounts()
	got, err := load.CountBatch(ctx, pool, summary.LoadBatchID)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range model.TableNames {
		if got[name] != want[name] {
			t.Errorf("%s: %d rows in db, want %d", name, got[name], want[name])
		}
		if summary.RowsCopied[name] != want[name] {
			t.Errorf("%s: summary copied %d, want %d", name, summary.RowsCopied[name], want[name])
		}
	}

	var wantPaid int64
	for _, mc := range ds.MedicalClaims {
		wantPaid += normalize.DollarsToCents(mc.Paid)
	}
	var gotPaid int64
	if err := pool.QueryRow(ctx,
		"SELECT coalesce(sum(paid_cents), 0) FROM claims.medicalclaims WHERE load_batch_id = $1",
		summary.LoadBatchID,
	).Scan(&gotPaid); err != nil {
		t.Fatal(err)
	}
	if gotPaid != wantPaid {
		t.Errorf("paid cents %d, want %d", gotPaid, wantPaid)
	}

	var status string
	if err := pool.QueryRow(ctx,
		"SELECT status FROM claims.load_batches WHERE load_batch_id = $1", summary.LoadBatchID,
	).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "loaded" {
		t.Errorf("batch status %q", status)
	}
}

func TestLoad_Idempotency(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	dir, _ := writeDataset(t, 12)

	first, err := load.Run(ctx, pool, zerolog.Nop(), load.Options{Dir: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}

	second, err := load.Run(ctx, pool, zerolog.Nop(), load.Options{Dir: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !second.AlreadyLoaded || second.LoadBatchID != first.LoadBatchID {
		t.Errorf("second run: already=%v batch=%s", second.AlreadyLoaded, second.LoadBatchID)
	}

	forced, err := load.Run(ctx, pool, zerolog.Nop(), load.Options{Dir: dir, Force: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if forced.AlreadyLoaded || forced.LoadBatchID == first.LoadBatchID {
		t.Errorf("forced run reused batch %s", forced.LoadBatchID)
	}
	if n := countBatches(t, pool); n != 1 {
		t.Errorf("%d batches after forced reload, want 1", n)
	}
}

func TestLoad_FailureRollsBack(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	dir, _ := writeDataset(t, 13)

	orphan := []model.SupplementalParquet{{
		MemberID: "MEM00001", ClaimID: "CLM999992025000", DX: "E119", AddDeleteFlag: "A",
	}}
	if err := parquet.WriteFile(filepath.Join(dir, "supplemental.parquet"), orphan); err != nil {
		t.Fatal(err)
	}

	_, err := load.Run(ctx, pool, zerolog.Nop(), load.Options{Dir: dir}, nil)
	var pe *load.PipelineError
	if !errors.As(err, &pe) || pe.Phase != load.PhaseStage {
		t.Fatalf("expected stage error, got %v", err)
	}
	if n := countBatches(t, pool); n != 0 {
		t.Errorf("%d batches left after failed load", n)
	}
	var enr int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM claims.enrollment").Scan(&enr); err != nil {
		t.Fatal(err)
	}
	if enr != 0 {
		t.Errorf("%d enrollment rows left after failed load", enr)
	}
}

func TestLoad_MissingTable(t *testing.T) {
	pool := setupDB(t)
	dir, _ := writeDataset(t, 14)
	if err := os.Remove(filepath.Join(dir, "pharmacyclaims.parquet")); err != nil {
		t.Fatal(err)
	}
	_, err := load.Run(context.Background(), pool, zerolog.Nop(), load.Options{Dir: dir}, nil)
	var pe *load.PipelineError
	if !errors.As(err, &pe) || pe.Phase != load.PhasePreflight {
		t.Fatalf("expected preflight error, got %v", err)
	}
}
