package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"attestry/internal/organization/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
	txcontext "attestry/pkg/platform/tx"
)

// Postgres persists organizations in the organizations table. Uniqueness of
// the lowercased name is enforced by a unique index, so the database is the
// arbiter when two registrations race across processes.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (id, name, status, stake, blacklist_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(org.ID),
		org.Name,
		string(org.Status),
		org.Stake,
		org.BlacklistReason,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	query := `
		SELECT id, name, status, stake, blacklist_reason, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(orgID)))
}

func (s *Postgres) FindByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT id, name, status, stake, blacklist_reason, created_at, updated_at
		FROM organizations
		WHERE lower(name) = lower($1)
	`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, name))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Organization, error) {
	query := `
		SELECT id, name, status, stake, blacklist_reason, created_at, updated_at
		FROM organizations
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

// Execute loads the organization FOR UPDATE inside a transaction, runs the
// validate and apply callbacks while the row lock is held, and persists the
// result. Concurrent Executes on the same organization serialize on the row
// lock, so validation always sees the latest committed state.
func (s *Postgres) Execute(
	ctx context.Context,
	orgID id.OrgID,
	validate func(*models.Organization) error,
	apply func(*models.Organization),
) (*models.Organization, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		SELECT id, name, status, stake, blacklist_reason, created_at, updated_at
		FROM organizations
		WHERE id = $1
		FOR UPDATE
	`
	org, err := s.scanOne(tx.QueryRowContext(ctx, query, uuid.UUID(orgID)))
	if err != nil {
		return nil, err
	}

	if err := validate(org); err != nil {
		return nil, err
	}
	apply(org)

	update := `
		UPDATE organizations
		SET status = $2, stake = $3, blacklist_reason = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(org.ID),
		string(org.Status),
		org.Stake,
		org.BlacklistReason,
		org.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit organization update: %w", err)
	}
	return org, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row rowScanner) (*models.Organization, error) {
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return org, err
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var (
		org    models.Organization
		rawID  uuid.UUID
		status string
	)
	err := row.Scan(
		&rawID,
		&org.Name,
		&status,
		&org.Stake,
		&org.BlacklistReason,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	org.ID = id.OrgID(rawID)
	org.Status = models.OrgStatus(status)
	return &org, nil
}
