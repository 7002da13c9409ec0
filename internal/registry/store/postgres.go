package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
	txcontext "attestry/pkg/platform/tx"
)

// Postgres persists degree records in the degree_records table. The unique
// index on certificate_hash is the cross-process arbiter for hash
// uniqueness; the in-process check-and-insert in CreateIfHashAvailable is
// collapsed into a single INSERT whose constraint violation maps to
// ErrAlreadyUsed.
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

func (s *Postgres) CreateIfHashAvailable(ctx context.Context, record *models.DegreeRecord) error {
	subject, err := json.Marshal(record.Subject)
	if err != nil {
		return fmt.Errorf("marshal subject fields: %w", err)
	}

	query := `
		INSERT INTO degree_records (
			id, certificate_hash, issuer_org_id, subject, status,
			verification_count, last_verified_at, revoked_at, revoke_reason, submitted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(record.ID),
		string(record.CertificateHash),
		uuid.UUID(record.IssuerOrgID),
		subject,
		string(record.Status),
		record.VerificationCount,
		record.LastVerifiedAt,
		record.RevokedAt,
		record.RevokeReason,
		record.SubmittedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert degree record: %w", err)
	}
	return nil
}

const degreeColumns = `
	id, certificate_hash, issuer_org_id, subject, status,
	verification_count, last_verified_at, revoked_at, revoke_reason, submitted_at
`

func (s *Postgres) FindByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error) {
	query := `SELECT ` + degreeColumns + ` FROM degree_records WHERE id = $1`
	return scanDegree(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(degreeID)))
}

func (s *Postgres) FindByHash(ctx context.Context, hash id.CertificateHash) (*models.DegreeRecord, error) {
	query := `SELECT ` + degreeColumns + ` FROM degree_records WHERE certificate_hash = $1`
	return scanDegree(s.execer(ctx).QueryRowContext(ctx, query, string(hash)))
}

// Execute loads the record FOR UPDATE inside a transaction, runs validate
// and apply while the row lock is held, and persists the mutable columns.
// Concurrent Executes on the same degree serialize on the row lock.
func (s *Postgres) Execute(
	ctx context.Context,
	degreeID id.DegreeID,
	validate func(*models.DegreeRecord) error,
	apply func(*models.DegreeRecord),
) (*models.DegreeRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `SELECT ` + degreeColumns + ` FROM degree_records WHERE id = $1 FOR UPDATE`
	record, err := scanDegree(tx.QueryRowContext(ctx, query, uuid.UUID(degreeID)))
	if err != nil {
		return nil, err
	}

	if err := validate(record); err != nil {
		return nil, err
	}
	apply(record)

	update := `
		UPDATE degree_records
		SET status = $2, verification_count = $3, last_verified_at = $4,
		    revoked_at = $5, revoke_reason = $6
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(record.ID),
		string(record.Status),
		record.VerificationCount,
		record.LastVerifiedAt,
		record.RevokedAt,
		record.RevokeReason,
	); err != nil {
		return nil, fmt.Errorf("update degree record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit degree update: %w", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDegree(row rowScanner) (*models.DegreeRecord, error) {
	var (
		record  models.DegreeRecord
		rawID   uuid.UUID
		rawOrg  uuid.UUID
		hash    string
		subject []byte
		status  string
	)
	err := row.Scan(
		&rawID,
		&hash,
		&rawOrg,
		&subject,
		&status,
		&record.VerificationCount,
		&record.LastVerifiedAt,
		&record.RevokedAt,
		&record.RevokeReason,
		&record.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan degree record: %w", err)
	}
	if err := json.Unmarshal(subject, &record.Subject); err != nil {
		return nil, fmt.Errorf("unmarshal subject fields: %w", err)
	}
	record.ID = id.DegreeID(rawID)
	record.IssuerOrgID = id.OrgID(rawOrg)
	record.CertificateHash = id.CertificateHash(hash)
	record.Status = models.DegreeStatus(status)
	return &record, nil
}
