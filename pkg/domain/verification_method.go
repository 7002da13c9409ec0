package domain

// VerificationMethod records how a verification decision was reached.
type VerificationMethod string

const (
	// MethodHashNotFound: the presented hash matched no record.
	MethodHashNotFound VerificationMethod = "HASH_NOT_FOUND"
	// MethodDegreeRevoked: the hash matched a revoked record; revocation
	// overrides all confidence math.
	MethodDegreeRevoked VerificationMethod = "DEGREE_REVOKED"
	// MethodHashOnly: the hash matched and no field comparison occurred.
	MethodHashOnly VerificationMethod = "HASH_ONLY"
	// MethodHashAndFields: the hash matched and extracted fields were
	// fuzzily compared against the stored subject.
	MethodHashAndFields VerificationMethod = "HASH_AND_FIELDS"
)

// IsValid reports whether m is one of the four defined methods.
func (m VerificationMethod) IsValid() bool {
	switch m {
	case MethodHashNotFound, MethodDegreeRevoked, MethodHashOnly, MethodHashAndFields:
		return true
	}
	return false
}
