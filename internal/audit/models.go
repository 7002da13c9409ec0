// Package audit implements the append-only per-degree audit trail.
package audit

import (
	"time"

	id "attestry/pkg/domain"
)

// Action classifies an audit trail entry.
type Action string

const (
	// ActionVerificationPerformed records one verification engine decision.
	ActionVerificationPerformed Action = "verification_performed"
	// ActionDegreeRevoked records an authority revocation.
	ActionDegreeRevoked Action = "degree_revoked"
)

// Event is one immutable entry in a degree's audit trail. Verification
// entries carry Method/Confidence/ExtractedHash; revocation entries carry
// Reason and the acting organization. Keep it transport-agnostic so stores
// and sinks can fan out.
type Event struct {
	ID            id.EventID            `json:"id"`
	DegreeID      id.DegreeID           `json:"degree_id"`
	Action        Action                `json:"action"`
	VerifierOrgID id.OrgID              `json:"verifier_org_id,omitempty"`
	ActorOrgID    id.OrgID              `json:"actor_org_id,omitempty"`
	Method        id.VerificationMethod `json:"method,omitempty"`
	Confidence    float64               `json:"confidence"`
	ExtractedHash id.CertificateHash    `json:"extracted_hash,omitempty"`
	Reason        string                `json:"reason,omitempty"`
	RequestID     string                `json:"request_id,omitempty"`
	Timestamp     time.Time             `json:"timestamp"`
}
