package domain

import dErrors "attestry/pkg/domain-errors"

// CertificateHash is the hex-encoded content hash that uniquely identifies
// one degree certificate document. The extraction pipeline emits SHA-256
// hashes as 64 lowercase hex characters; anything else is rejected rather
// than normalized, since a malformed hash means the collaborator upstream is
// broken or the input was tampered with.
type CertificateHash string

const certificateHashLength = 64

func (h CertificateHash) String() string { return string(h) }

// ParseCertificateHash validates a presented hash at a trust boundary.
func ParseCertificateHash(raw string) (CertificateHash, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "certificate hash is required")
	}
	if len(raw) != certificateHashLength {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			"certificate hash must be exactly 64 hex characters, got "+raw)
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", dErrors.New(dErrors.CodeInvalidInput,
				"certificate hash must be lowercase hex, got "+raw)
		}
	}
	return CertificateHash(raw), nil
}
