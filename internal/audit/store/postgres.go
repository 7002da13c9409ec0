package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"attestry/internal/audit"
	id "attestry/pkg/domain"
	txcontext "attestry/pkg/platform/tx"
)

// Postgres persists audit events in the audit_events table. There is no
// update or delete path; the table is append-only by construction.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, degree_id, action, verifier_org_id, actor_org_id,
			method, confidence, extracted_hash, reason, request_id, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	var verifier, actor *uuid.UUID
	if !event.VerifierOrgID.IsNil() {
		v := uuid.UUID(event.VerifierOrgID)
		verifier = &v
	}
	if !event.ActorOrgID.IsNil() {
		a := uuid.UUID(event.ActorOrgID)
		actor = &a
	}

	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.DegreeID),
		string(event.Action),
		verifier,
		actor,
		string(event.Method),
		event.Confidence,
		string(event.ExtractedHash),
		event.Reason,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByDegree returns the degree's events newest first.
func (s *Postgres) ListByDegree(ctx context.Context, degreeID id.DegreeID) ([]audit.Event, error) {
	query := `
		SELECT id, degree_id, action, verifier_org_id, actor_org_id,
		       method, confidence, extracted_hash, reason, request_id, timestamp
		FROM audit_events
		WHERE degree_id = $1
		ORDER BY timestamp DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(degreeID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event           audit.Event
			rawID, rawDegree uuid.UUID
			verifier, actor *uuid.UUID
			action, method  string
			hash            string
		)
		err := rows.Scan(
			&rawID,
			&rawDegree,
			&action,
			&verifier,
			&actor,
			&method,
			&event.Confidence,
			&hash,
			&event.Reason,
			&event.RequestID,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.ID = id.EventID(rawID)
		event.DegreeID = id.DegreeID(rawDegree)
		event.Action = audit.Action(action)
		event.Method = id.VerificationMethod(method)
		event.ExtractedHash = id.CertificateHash(hash)
		if verifier != nil {
			event.VerifierOrgID = id.OrgID(*verifier)
		}
		if actor != nil {
			event.ActorOrgID = id.OrgID(*actor)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
