package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "attestry/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseOrgID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseOrgID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseOrgID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		orgID, err := ParseOrgID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, OrgID(validUUID), orgID)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	orgID := OrgID(uuid.New())
	degreeID := DegreeID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ OrgID = degreeID   // compile error
	// var _ DegreeID = orgID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(orgID), uuid.UUID(degreeID))
}

// TestParseID_SecurityInvariants validates trust boundary parsing rules:
// parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE organizations;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},

		// Edge cases
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},

		// Valid
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDegreeID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types share identical
// parsing behavior, since they share the same underlying validation.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errOrg := ParseOrgID(validUUID)
		_, errDegree := ParseDegreeID(validUUID)
		_, errEvent := ParseEventID(validUUID)

		require.NoError(t, errOrg)
		require.NoError(t, errDegree)
		require.NoError(t, errEvent)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errOrg := ParseOrgID(input)
			_, errDegree := ParseDegreeID(input)
			_, errEvent := ParseEventID(input)

			require.Error(t, errOrg)
			require.Error(t, errDegree)
			require.Error(t, errEvent)
		})
	}
}

// TestID_JSONRoundTrip verifies IDs marshal as canonical UUID strings, not
// byte arrays, since they appear in audit payloads and API responses.
func TestID_JSONRoundTrip(t *testing.T) {
	orgID := NewOrgID()

	text, err := orgID.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, orgID.String(), string(text))

	var parsed OrgID
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, orgID, parsed)
}
