package models

import (
	"time"

	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

// Organization is the aggregate root for an enrolled institution.
//
// Invariants:
//   - Name is non-empty, at most 128 characters, unique case-insensitively
//   - Stake is set once at enrollment and never falls below the policy floor
//   - Status transitions follow the directory state machine; blacklisted is
//     terminal
//   - CreatedAt is immutable after construction
//
// Blacklisting an organization does not cascade to its degree records. The
// registry gates new submissions through IsEligibleIssuer at submit time;
// existing records are only invalidated by an explicit revoke. This keeps
// the audit trail honest: the record says what was true when it was issued.
type Organization struct {
	ID              id.OrgID  `json:"id"`
	Name            string    `json:"name"`
	Status          OrgStatus `json:"status"`
	Stake           int64     `json:"stake"`
	BlacklistReason string    `json:"blacklist_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewOrganization constructs a pending organization, validating enrollment
// invariants. The stake floor is checked by the service against policy; the
// aggregate only refuses negative stakes.
func NewOrganization(orgID id.OrgID, name string, stake int64, now time.Time) (*Organization, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization name must be 128 characters or less")
	}
	if stake < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization stake cannot be negative")
	}
	return &Organization{
		ID:        orgID,
		Name:      name,
		Status:    OrgStatusPending,
		Stake:     stake,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsEligibleIssuer reports whether the organization may submit new degree
// records. Only active organizations qualify.
func (o *Organization) IsEligibleIssuer() bool {
	return o.Status == OrgStatusActive
}

// CanApprove checks the PENDING→ACTIVE transition.
// Use with ApplyApproval in Execute callbacks.
func (o *Organization) CanApprove() error {
	if !o.Status.CanTransitionTo(OrgStatusActive) || o.Status != OrgStatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"organization in status %q cannot be approved", o.Status)
	}
	return nil
}

// ApplyApproval transitions the organization to active.
// Call CanApprove first to validate the transition.
func (o *Organization) ApplyApproval(now time.Time) {
	o.Status = OrgStatusActive
	o.UpdatedAt = now
}

// CanSuspend checks the ACTIVE→SUSPENDED transition.
func (o *Organization) CanSuspend() error {
	if !o.Status.CanTransitionTo(OrgStatusSuspended) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"organization in status %q cannot be suspended", o.Status)
	}
	return nil
}

// ApplySuspension transitions the organization to suspended.
func (o *Organization) ApplySuspension(now time.Time) {
	o.Status = OrgStatusSuspended
	o.UpdatedAt = now
}

// CanReinstate checks the SUSPENDED→ACTIVE transition.
func (o *Organization) CanReinstate() error {
	if o.Status != OrgStatusSuspended {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"organization in status %q cannot be reinstated", o.Status)
	}
	return nil
}

// ApplyReinstatement transitions the organization back to active.
func (o *Organization) ApplyReinstatement(now time.Time) {
	o.Status = OrgStatusActive
	o.UpdatedAt = now
}

// CanBlacklist checks that the organization is not already blacklisted.
// Every non-terminal status may be blacklisted.
func (o *Organization) CanBlacklist() error {
	if !o.Status.CanTransitionTo(OrgStatusBlacklisted) {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization is already blacklisted")
	}
	return nil
}

// ApplyBlacklist transitions the organization to the terminal blacklisted
// status, recording the reason.
func (o *Organization) ApplyBlacklist(reason string, now time.Time) {
	o.Status = OrgStatusBlacklisted
	o.BlacklistReason = reason
	o.UpdatedAt = now
}
