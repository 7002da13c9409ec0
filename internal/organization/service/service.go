// Package service implements the organization directory: enrollment, the
// authority-driven status lifecycle, and the issuer eligibility check the
// certificate registry consults on every submission.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"attestry/internal/organization/models"
	platformmetrics "attestry/internal/platform/metrics"
	"attestry/internal/policy"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

// OrganizationStore is the persistence boundary for the directory.
// Execute must hold the record lock (mutex or FOR UPDATE) across both
// callbacks so validate-then-mutate is atomic per organization.
type OrganizationStore interface {
	CreateIfNameAvailable(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
	FindByName(ctx context.Context, name string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Execute(ctx context.Context, orgID id.OrgID,
		validate func(*models.Organization) error,
		apply func(*models.Organization)) (*models.Organization, error)
}

// Directory orchestrates the organization lifecycle. Admin operations
// (approve, suspend, reinstate, blacklist) are restricted to the attestation
// authority; the caller identity arrives as an explicit parameter from the
// authentication collaborator.
type Directory struct {
	orgs      OrganizationStore
	authority id.OrgID
	logger    *slog.Logger
	metrics   *platformmetrics.Metrics
}

// Option configures a Directory.
type Option func(*Directory)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

func WithMetrics(m *platformmetrics.Metrics) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}

// NewDirectory constructs the directory. authority is the single organization
// permitted to run admin operations and revoke degrees.
func NewDirectory(orgs OrganizationStore, authority id.OrgID, opts ...Option) *Directory {
	d := &Directory{orgs: orgs, authority: authority}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Authority returns the attestation authority's organization ID.
func (d *Directory) Authority() id.OrgID {
	return d.authority
}

// Register enrolls a new organization in pending status. The stake must meet
// the policy floor; the name must be unique case-insensitively.
func (d *Directory) Register(ctx context.Context, name string, stake int64) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if stake < policy.MinimumStake {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"stake %d is below the minimum of %d", stake, policy.MinimumStake)
	}

	org, err := models.NewOrganization(id.NewOrgID(), name, stake, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := d.orgs.CreateIfNameAvailable(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Newf(dErrors.CodeConflict,
				"organization %q is already registered", name)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register organization")
	}

	d.logEvent(ctx, "organization_registered", "org_id", org.ID.String(), "name", org.Name)
	if d.metrics != nil {
		d.metrics.IncrementOrganizationsRegistered()
	}
	return org, nil
}

// Approve transitions a pending organization to active. Authority only.
func (d *Directory) Approve(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error) {
	if err := d.requireAuthority(actorOrgID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	org, err := d.orgs.Execute(ctx, orgID,
		func(o *models.Organization) error {
			if err := o.CanApprove(); err != nil {
				return dErrors.Newf(dErrors.CodeConflict,
					"organization %s is %s, not pending", orgID, o.Status)
			}
			return nil
		},
		func(o *models.Organization) {
			o.ApplyApproval(now)
		},
	)
	if err != nil {
		return nil, wrapOrgErr(err, orgID)
	}
	d.logEvent(ctx, "organization_approved", "org_id", orgID.String())
	return org, nil
}

// Suspend transitions an active organization to suspended. Authority only.
// Suspension blocks new submissions but leaves issued records untouched.
func (d *Directory) Suspend(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error) {
	if err := d.requireAuthority(actorOrgID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	org, err := d.orgs.Execute(ctx, orgID,
		func(o *models.Organization) error {
			if err := o.CanSuspend(); err != nil {
				return dErrors.Newf(dErrors.CodeConflict,
					"organization %s in status %s cannot be suspended", orgID, o.Status)
			}
			return nil
		},
		func(o *models.Organization) {
			o.ApplySuspension(now)
		},
	)
	if err != nil {
		return nil, wrapOrgErr(err, orgID)
	}
	d.logEvent(ctx, "organization_suspended", "org_id", orgID.String())
	return org, nil
}

// Reinstate transitions a suspended organization back to active. Authority only.
func (d *Directory) Reinstate(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error) {
	if err := d.requireAuthority(actorOrgID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	org, err := d.orgs.Execute(ctx, orgID,
		func(o *models.Organization) error {
			if err := o.CanReinstate(); err != nil {
				return dErrors.Newf(dErrors.CodeConflict,
					"organization %s in status %s cannot be reinstated", orgID, o.Status)
			}
			return nil
		},
		func(o *models.Organization) {
			o.ApplyReinstatement(now)
		},
	)
	if err != nil {
		return nil, wrapOrgErr(err, orgID)
	}
	d.logEvent(ctx, "organization_reinstated", "org_id", orgID.String())
	return org, nil
}

// Blacklist permanently bars an organization. Authority only. Previously
// issued degree records remain active until explicitly revoked.
func (d *Directory) Blacklist(ctx context.Context, orgID id.OrgID, reason string, actorOrgID id.OrgID) (*models.Organization, error) {
	if err := d.requireAuthority(actorOrgID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "blacklist reason is required")
	}
	now := requestcontext.Now(ctx)
	org, err := d.orgs.Execute(ctx, orgID,
		func(o *models.Organization) error {
			if err := o.CanBlacklist(); err != nil {
				return dErrors.Newf(dErrors.CodeConflict,
					"organization %s is already blacklisted", orgID)
			}
			return nil
		},
		func(o *models.Organization) {
			o.ApplyBlacklist(reason, now)
		},
	)
	if err != nil {
		return nil, wrapOrgErr(err, orgID)
	}
	d.logEvent(ctx, "organization_blacklisted", "org_id", orgID.String(), "reason", reason)
	return org, nil
}

// IsEligibleIssuer reports whether the organization may submit new degree
// records: it exists and is active.
func (d *Directory) IsEligibleIssuer(ctx context.Context, orgID id.OrgID) (bool, error) {
	org, err := d.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org.IsEligibleIssuer(), nil
}

// Get fetches a single organization.
func (d *Directory) Get(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	org, err := d.orgs.FindByID(ctx, orgID)
	if err != nil {
		return nil, wrapOrgErr(err, orgID)
	}
	return org, nil
}

// List returns all enrolled organizations, oldest first.
func (d *Directory) List(ctx context.Context) ([]*models.Organization, error) {
	orgs, err := d.orgs.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

func (d *Directory) requireAuthority(actorOrgID id.OrgID) error {
	if actorOrgID != d.authority {
		return dErrors.Newf(dErrors.CodeUnauthorized,
			"organization %s is not the attestation authority", actorOrgID)
	}
	return nil
}

func wrapOrgErr(err error, orgID id.OrgID) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeNotFound, "organization %s not found", orgID)
	case dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeUnauthorized):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "organization store failure")
	}
}

func (d *Directory) logEvent(ctx context.Context, event string, attributes ...any) {
	if d.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	d.logger.InfoContext(ctx, event, args...)
}
