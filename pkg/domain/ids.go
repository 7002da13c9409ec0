// Package domain defines the typed identifiers and value types shared across
// the attestation core. IDs are distinct UUID types so an organization ID can
// never be passed where a degree ID is expected; the compiler enforces it.
package domain

import (
	"github.com/google/uuid"

	dErrors "attestry/pkg/domain-errors"
)

// OrgID identifies an organization (issuer, verifier, or the attestation
// authority).
type OrgID uuid.UUID

// DegreeID identifies a degree record in the certificate registry.
type DegreeID uuid.UUID

// EventID identifies a single entry in the audit trail.
type EventID uuid.UUID

// NewOrgID returns a fresh random OrgID.
func NewOrgID() OrgID { return OrgID(uuid.New()) }

// NewDegreeID returns a fresh random DegreeID.
func NewDegreeID() DegreeID { return DegreeID(uuid.New()) }

// NewEventID returns a fresh random EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

func (id OrgID) String() string    { return uuid.UUID(id).String() }
func (id DegreeID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string  { return uuid.UUID(id).String() }

func (id OrgID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DegreeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// The ID types marshal as canonical UUID strings in JSON. Unmarshaling
// accepts the nil UUID so stored payloads with unset optional IDs round-trip.

func (id OrgID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id DegreeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id EventID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

func (id *OrgID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	*id = OrgID(parsed)
	return nil
}

func (id *DegreeID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	*id = DegreeID(parsed)
	return nil
}

func (id *EventID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	*id = EventID(parsed)
	return nil
}

// parseUUID enforces the shared invariant for all ID types: the input must be
// a valid, non-nil UUID. Nil UUIDs are rejected because they are the zero
// value of an unset field, never a real identity.
func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseOrgID parses and validates an organization ID at a trust boundary.
func ParseOrgID(raw string) (OrgID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return OrgID{}, err
	}
	return OrgID(parsed), nil
}

// ParseDegreeID parses and validates a degree ID at a trust boundary.
func ParseDegreeID(raw string) (DegreeID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return DegreeID{}, err
	}
	return DegreeID(parsed), nil
}

// ParseEventID parses and validates an audit event ID at a trust boundary.
func ParseEventID(raw string) (EventID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return EventID{}, err
	}
	return EventID(parsed), nil
}
