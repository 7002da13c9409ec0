// Package models defines the degree record aggregate and its lifecycle.
package models

import (
	"time"

	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

// DegreeStatus is the lifecycle state of a degree record.
type DegreeStatus string

const (
	// DegreeStatusActive is the initial and only non-terminal state.
	DegreeStatusActive DegreeStatus = "active"
	// DegreeStatusRevoked is terminal. A revoked degree never verifies again.
	DegreeStatusRevoked DegreeStatus = "revoked"
)

// DegreeRecord is the canonical entry for one issued certificate.
//
// Invariants:
//   - CertificateHash maps to at most one record, enforced under concurrency
//     by the store's CreateIfHashAvailable
//   - CertificateHash and IssuerOrgID are immutable after submission
//   - Status moves ACTIVE→REVOKED exactly once; no other transitions exist
//   - VerificationCount is monotonically non-decreasing and mutated only by
//     the verification engine through RecordVerification
type DegreeRecord struct {
	ID                id.DegreeID        `json:"id"`
	CertificateHash   id.CertificateHash `json:"certificate_hash"`
	IssuerOrgID       id.OrgID           `json:"issuer_org_id"`
	Subject           id.SubjectFields   `json:"subject"`
	Status            DegreeStatus       `json:"status"`
	VerificationCount int64              `json:"verification_count"`
	LastVerifiedAt    *time.Time         `json:"last_verified_at,omitempty"`
	RevokedAt         *time.Time         `json:"revoked_at,omitempty"`
	RevokeReason      string             `json:"revoke_reason,omitempty"`
	SubmittedAt       time.Time          `json:"submitted_at"`
}

// NewDegreeRecord constructs an active record at submission time. The hash
// is assumed already validated at the trust boundary.
func NewDegreeRecord(degreeID id.DegreeID, hash id.CertificateHash, issuer id.OrgID, subject id.SubjectFields, now time.Time) *DegreeRecord {
	return &DegreeRecord{
		ID:              degreeID,
		CertificateHash: hash,
		IssuerOrgID:     issuer,
		Subject:         subject,
		Status:          DegreeStatusActive,
		SubmittedAt:     now,
	}
}

// IsRevoked reports whether the record has reached its terminal state.
func (r *DegreeRecord) IsRevoked() bool {
	return r.Status == DegreeStatusRevoked
}

// CanRevoke checks the ACTIVE→REVOKED transition.
// Use with ApplyRevocation in Execute callbacks.
func (r *DegreeRecord) CanRevoke() error {
	if r.Status == DegreeStatusRevoked {
		return dErrors.New(dErrors.CodeInvariantViolation, "degree is already revoked")
	}
	return nil
}

// ApplyRevocation transitions the record to revoked, recording reason and
// time. Call CanRevoke first to validate the transition.
func (r *DegreeRecord) ApplyRevocation(reason string, now time.Time) {
	r.Status = DegreeStatusRevoked
	r.RevokeReason = reason
	r.RevokedAt = &now
}

// ApplyVerification records one successful verification: the counter only
// ever grows and the timestamp only moves forward.
func (r *DegreeRecord) ApplyVerification(now time.Time) {
	r.VerificationCount++
	r.LastVerifiedAt = &now
}
