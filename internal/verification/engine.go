// Package verification implements the dual-factor verification engine: a
// hash match against the registry is the authoritative factor, optionally
// blended with a fuzzy comparison of OCR-extracted fields.
package verification

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"attestry/internal/audit"
	orgmodels "attestry/internal/organization/models"
	"attestry/internal/policy"
	regmodels "attestry/internal/registry/models"
	vmetrics "attestry/internal/verification/metrics"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/requestcontext"
)

// RegistryClient is the slice of the certificate registry the engine needs:
// the hash lookup and the post-decision bookkeeping.
type RegistryClient interface {
	Lookup(ctx context.Context, rawHash string) (*regmodels.DegreeRecord, error)
	RecordVerification(ctx context.Context, degreeID id.DegreeID) error
}

// DirectoryClient resolves the verifier organization. The verifier identity
// is advisory: it is recorded on the audit event but never gates the
// decision.
type DirectoryClient interface {
	Get(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error)
}

// AuditAppender receives the engine's verification events.
type AuditAppender interface {
	Append(ctx context.Context, event audit.Event) error
}

// ConfidencePolicy combines the authoritative hash factor (always 1.0 once
// a record matched) with the field comparison score.
type ConfidencePolicy interface {
	Combine(fieldConfidence float64) float64
	Name() string
}

// SimpleAverage is the on-ledger decision formula: the plain mean of the
// hash factor and the field score.
type SimpleAverage struct{}

func (SimpleAverage) Combine(fieldConfidence float64) float64 {
	return (1.0 + fieldConfidence) / 2
}

func (SimpleAverage) Name() string { return "simple_average" }

// WeightedBlend is the alternative gateway-side formula: 70% hash factor,
// 30% field score. Selecting it is an explicit deployment choice.
type WeightedBlend struct{}

func (WeightedBlend) Combine(fieldConfidence float64) float64 {
	return 0.7*1.0 + 0.3*fieldConfidence
}

func (WeightedBlend) Name() string { return "weighted_blend" }

// Result is one verification decision.
type Result struct {
	Verified   bool                  `json:"verified"`
	Confidence float64               `json:"confidence"`
	DegreeID   id.DegreeID           `json:"degree_id,omitempty"`
	Method     id.VerificationMethod `json:"method"`
}

// Engine computes verification decisions. It never mutates degree status;
// its only writes are verification bookkeeping and audit events.
type Engine struct {
	registry  RegistryClient
	directory DirectoryClient
	trail     AuditAppender
	policy    ConfidencePolicy
	logger    *slog.Logger
	metrics   *vmetrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *vmetrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithConfidencePolicy overrides the default SimpleAverage formula.
func WithConfidencePolicy(p ConfidencePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

func NewEngine(registry RegistryClient, directory DirectoryClient, trail AuditAppender, opts ...Option) *Engine {
	e := &Engine{
		registry:  registry,
		directory: directory,
		trail:     trail,
		policy:    SimpleAverage{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify decides whether the presented certificate is authentic.
//
//  1. Unknown hash: not verified, confidence 0, no registry mutation and no
//     audit event, since there is no degree to key either by.
//  2. Revoked degree: not verified, confidence 0 regardless of fields; the
//     attempt is audited but the verification counter is untouched.
//  3. Hash match: base confidence 1.0; when extracted fields overlap the
//     stored subject the combined score comes from the configured policy,
//     otherwise the decision is hash-only.
//
// Every decision on an existing degree appends exactly one audit event.
func (e *Engine) Verify(ctx context.Context, rawHash string, extracted *id.SubjectFields, verifierOrgID id.OrgID) (Result, error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveVerifyLatency(time.Since(start))
	}()

	hash, err := id.ParseCertificateHash(rawHash)
	if err != nil {
		return Result{}, err
	}

	// The record read and the advisory verifier lookup are independent;
	// fetch them in parallel.
	var (
		record        *regmodels.DegreeRecord
		recordErr     error
		verifierKnown bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		record, recordErr = e.registry.Lookup(gctx, string(hash))
		if recordErr != nil && !dErrors.HasCode(recordErr, dErrors.CodeNotFound) {
			return recordErr
		}
		return nil
	})
	g.Go(func() error {
		if verifierOrgID.IsNil() {
			return nil
		}
		if _, err := e.directory.Get(gctx, verifierOrgID); err == nil {
			verifierKnown = true
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if recordErr != nil {
		result := Result{Verified: false, Confidence: 0, Method: id.MethodHashNotFound}
		e.metrics.IncrementOutcome(string(result.Method), false)
		e.logDecision(ctx, hash, result, verifierKnown)
		return result, nil
	}

	if record.IsRevoked() {
		result := Result{
			Verified:   false,
			Confidence: 0,
			DegreeID:   record.ID,
			Method:     id.MethodDegreeRevoked,
		}
		if err := e.appendEvent(ctx, record.ID, verifierOrgID, result, hash); err != nil {
			return Result{}, err
		}
		e.metrics.IncrementOutcome(string(result.Method), false)
		e.logDecision(ctx, hash, result, verifierKnown)
		return result, nil
	}

	combined := 1.0
	method := id.MethodHashOnly
	if extracted != nil && !extracted.IsEmpty() {
		if fieldConfidence, compared := FieldSimilarity(record.Subject, *extracted); compared > 0 {
			combined = e.policy.Combine(fieldConfidence)
			method = id.MethodHashAndFields
		}
	}
	combined = clamp(combined)

	result := Result{
		Verified:   combined >= policy.VerifiedThreshold,
		Confidence: combined,
		DegreeID:   record.ID,
		Method:     method,
	}

	if err := e.registry.RecordVerification(ctx, record.ID); err != nil {
		// A concurrent revoke can land between the lookup and the
		// bookkeeping; the record's terminal state wins.
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			revoked := Result{
				Verified:   false,
				Confidence: 0,
				DegreeID:   record.ID,
				Method:     id.MethodDegreeRevoked,
			}
			if err := e.appendEvent(ctx, record.ID, verifierOrgID, revoked, hash); err != nil {
				return Result{}, err
			}
			e.metrics.IncrementOutcome(string(revoked.Method), false)
			return revoked, nil
		}
		return Result{}, err
	}
	if err := e.appendEvent(ctx, record.ID, verifierOrgID, result, hash); err != nil {
		return Result{}, err
	}

	e.metrics.IncrementOutcome(string(method), result.Verified)
	e.metrics.ObserveConfidence(combined)
	e.logDecision(ctx, hash, result, verifierKnown)
	return result, nil
}

func (e *Engine) appendEvent(ctx context.Context, degreeID id.DegreeID, verifierOrgID id.OrgID, result Result, hash id.CertificateHash) error {
	return e.trail.Append(ctx, audit.Event{
		DegreeID:      degreeID,
		Action:        audit.ActionVerificationPerformed,
		VerifierOrgID: verifierOrgID,
		Method:        result.Method,
		Confidence:    result.Confidence,
		ExtractedHash: hash,
		Timestamp:     requestcontext.Now(ctx),
	})
}

func (e *Engine) logDecision(ctx context.Context, hash id.CertificateHash, result Result, verifierKnown bool) {
	if e.logger == nil {
		return
	}
	e.logger.InfoContext(ctx, "verification decision",
		"hash", hash.String(),
		"method", string(result.Method),
		"verified", result.Verified,
		"confidence", result.Confidence,
		"verifier_known", verifierKnown,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func clamp(confidence float64) float64 {
	switch {
	case confidence < 0:
		return 0
	case confidence > 1:
		return 1
	default:
		return confidence
	}
}
