// Package service implements the certificate registry: the canonical,
// hash-unique store of degree records and the only mutation path for the
// degree lifecycle.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"attestry/internal/audit"
	platformmetrics "attestry/internal/platform/metrics"
	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

// DegreeStore is the persistence boundary for degree records.
// CreateIfHashAvailable must be atomic with respect to concurrent calls on
// the same hash; Execute must hold the record lock across both callbacks.
type DegreeStore interface {
	CreateIfHashAvailable(ctx context.Context, record *models.DegreeRecord) error
	FindByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error)
	FindByHash(ctx context.Context, hash id.CertificateHash) (*models.DegreeRecord, error)
	Execute(ctx context.Context, degreeID id.DegreeID,
		validate func(*models.DegreeRecord) error,
		apply func(*models.DegreeRecord)) (*models.DegreeRecord, error)
}

// IssuerDirectory is the slice of the organization directory the registry
// consults: submission gating and the authority identity for revokes.
type IssuerDirectory interface {
	IsEligibleIssuer(ctx context.Context, orgID id.OrgID) (bool, error)
	Authority() id.OrgID
}

// AuditAppender receives the registry's revocation entries.
type AuditAppender interface {
	Append(ctx context.Context, event audit.Event) error
}

// Registry owns degree record creation and the ACTIVE→REVOKED transition.
type Registry struct {
	degrees   DegreeStore
	directory IssuerDirectory
	trail     AuditAppender
	logger    *slog.Logger
	metrics   *platformmetrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func NewRegistry(degrees DegreeStore, directory IssuerDirectory, trail AuditAppender, opts ...Option) *Registry {
	r := &Registry{degrees: degrees, directory: directory, trail: trail}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit validates and inserts a new degree record. The hash must be
// well-formed, the issuer eligible, and the hash unused; the existence check
// and insert are one indivisible operation at the store, so of two
// concurrent submissions with the same hash exactly one succeeds.
func (r *Registry) Submit(ctx context.Context, issuerOrgID id.OrgID, rawHash string, subject id.SubjectFields) (id.DegreeID, error) {
	hash, err := id.ParseCertificateHash(rawHash)
	if err != nil {
		return id.DegreeID{}, err
	}

	eligible, err := r.directory.IsEligibleIssuer(ctx, issuerOrgID)
	if err != nil {
		return id.DegreeID{}, err
	}
	if !eligible {
		return id.DegreeID{}, dErrors.Newf(dErrors.CodeForbidden,
			"organization %s is not an eligible issuer", issuerOrgID)
	}

	record := models.NewDegreeRecord(id.NewDegreeID(), hash, issuerOrgID, subject, requestcontext.Now(ctx))
	if err := r.degrees.CreateIfHashAvailable(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return id.DegreeID{}, dErrors.Newf(dErrors.CodeConflict,
				"certificate hash %s is already registered", hash)
		}
		return id.DegreeID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store degree record")
	}

	r.logEvent(ctx, "degree_submitted",
		"degree_id", record.ID.String(),
		"issuer_org_id", issuerOrgID.String(),
	)
	if r.metrics != nil {
		r.metrics.IncrementDegreesSubmitted()
	}
	return record.ID, nil
}

// Lookup fetches a degree record by certificate hash.
func (r *Registry) Lookup(ctx context.Context, rawHash string) (*models.DegreeRecord, error) {
	hash, err := id.ParseCertificateHash(rawHash)
	if err != nil {
		return nil, err
	}
	record, err := r.degrees.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no degree found for hash %s", hash)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up degree")
	}
	return record, nil
}

// GetByID fetches a degree record by its generated ID.
func (r *Registry) GetByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error) {
	record, err := r.degrees.FindByID(ctx, degreeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "degree %s not found", degreeID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load degree")
	}
	return record, nil
}

// Revoke transitions a degree to its terminal state. Only the attestation
// authority may revoke; a second revoke fails with a conflict and leaves
// the record untouched. Validation and mutation run under the store's
// per-record lock.
func (r *Registry) Revoke(ctx context.Context, degreeID id.DegreeID, reason string, actorOrgID id.OrgID) (*models.DegreeRecord, error) {
	if actorOrgID != r.directory.Authority() {
		return nil, dErrors.Newf(dErrors.CodeUnauthorized,
			"organization %s is not the attestation authority", actorOrgID)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "revocation reason is required")
	}

	now := requestcontext.Now(ctx)
	record, err := r.degrees.Execute(ctx, degreeID,
		func(rec *models.DegreeRecord) error {
			if err := rec.CanRevoke(); err != nil {
				return dErrors.Newf(dErrors.CodeConflict, "degree %s is already revoked", degreeID)
			}
			return nil
		},
		func(rec *models.DegreeRecord) {
			rec.ApplyRevocation(reason, now)
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Newf(dErrors.CodeNotFound, "degree %s not found", degreeID)
		case dErrors.HasCode(err, dErrors.CodeConflict):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke degree")
		}
	}

	if err := r.trail.Append(ctx, audit.Event{
		DegreeID:   degreeID,
		Action:     audit.ActionDegreeRevoked,
		ActorOrgID: actorOrgID,
		Reason:     reason,
		Timestamp:  now,
	}); err != nil {
		return nil, err
	}

	r.logEvent(ctx, "degree_revoked",
		"degree_id", degreeID.String(),
		"actor_org_id", actorOrgID.String(),
		"reason", reason,
	)
	if r.metrics != nil {
		r.metrics.IncrementDegreesRevoked()
	}
	return record, nil
}

// RecordVerification bumps the verification bookkeeping on a degree. Called
// by the verification engine only after a successful, non-revoked hash
// lookup; the counter never decreases.
func (r *Registry) RecordVerification(ctx context.Context, degreeID id.DegreeID) error {
	now := requestcontext.Now(ctx)
	_, err := r.degrees.Execute(ctx, degreeID,
		func(rec *models.DegreeRecord) error {
			if rec.IsRevoked() {
				return sentinel.ErrInvalidState
			}
			return nil
		},
		func(rec *models.DegreeRecord) {
			rec.ApplyVerification(now)
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Newf(dErrors.CodeNotFound, "degree %s not found", degreeID)
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.Newf(dErrors.CodeConflict, "degree %s is revoked", degreeID)
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
		}
	}
	return nil
}

func (r *Registry) logEvent(ctx context.Context, event string, attributes ...any) {
	if r.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	r.logger.InfoContext(ctx, event, args...)
}
