package handler

import (
	"time"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
)

// SubmitResponse is the HTTP response for POST /degrees.
type SubmitResponse struct {
	DegreeID string `json:"degree_id"`
}

// RecordResponse is the HTTP representation of a degree record.
type RecordResponse struct {
	ID                string           `json:"id"`
	CertificateHash   string           `json:"certificate_hash"`
	IssuerOrgID       string           `json:"issuer_org_id"`
	Subject           id.SubjectFields `json:"subject"`
	Status            string           `json:"status"`
	VerificationCount int64            `json:"verification_count"`
	LastVerifiedAt    *time.Time       `json:"last_verified_at,omitempty"`
	RevokedAt         *time.Time       `json:"revoked_at,omitempty"`
	RevokeReason      string           `json:"revoke_reason,omitempty"`
	SubmittedAt       time.Time        `json:"submitted_at"`
}

// FromRecord converts a domain degree record to an HTTP response.
func FromRecord(record *models.DegreeRecord) *RecordResponse {
	return &RecordResponse{
		ID:                record.ID.String(),
		CertificateHash:   record.CertificateHash.String(),
		IssuerOrgID:       record.IssuerOrgID.String(),
		Subject:           record.Subject,
		Status:            string(record.Status),
		VerificationCount: record.VerificationCount,
		LastVerifiedAt:    record.LastVerifiedAt,
		RevokedAt:         record.RevokedAt,
		RevokeReason:      record.RevokeReason,
		SubmittedAt:       record.SubmittedAt,
	}
}
