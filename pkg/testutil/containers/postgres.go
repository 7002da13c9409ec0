//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production tables. The unique index on certificate_hash
// and the case-insensitive one on organization names are what the stores'
// create-if-available paths rely on.
const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	status           TEXT NOT NULL,
	stake            BIGINT NOT NULL,
	blacklist_reason TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS organizations_name_key ON organizations (LOWER(name));

CREATE TABLE IF NOT EXISTS degree_records (
	id                 UUID PRIMARY KEY,
	certificate_hash   TEXT NOT NULL UNIQUE,
	issuer_org_id      UUID NOT NULL,
	subject            JSONB NOT NULL,
	status             TEXT NOT NULL,
	verification_count BIGINT NOT NULL DEFAULT 0,
	last_verified_at   TIMESTAMPTZ,
	revoked_at         TIMESTAMPTZ,
	revoke_reason      TEXT NOT NULL DEFAULT '',
	submitted_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_events (
	id              UUID PRIMARY KEY,
	degree_id       UUID NOT NULL,
	action          TEXT NOT NULL,
	verifier_org_id UUID,
	actor_org_id    UUID,
	method          TEXT NOT NULL DEFAULT '',
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	extracted_hash  TEXT NOT NULL DEFAULT '',
	reason          TEXT NOT NULL DEFAULT '',
	request_id      TEXT NOT NULL DEFAULT '',
	timestamp       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_degree_idx ON audit_events (degree_id, timestamp DESC);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// attestation schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("attestry_test"),
		tcpostgres.WithUsername("attestry"),
		tcpostgres.WithPassword("attestry"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// Exec runs a statement against the test database.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// TruncateTables empties the given tables. Use between tests for isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
