package domain

// SubjectFields carries the human-readable fields of a degree certificate.
// The set is fixed and each field is optional (empty means absent). Keeping
// the fields enumerated instead of a loose map makes the "compare only fields
// present on both sides" rule in the verification engine explicit and typed.
type SubjectFields struct {
	StudentName       string `json:"student_name,omitempty"`
	DegreeName        string `json:"degree_name,omitempty"`
	InstitutionName   string `json:"institution_name,omitempty"`
	IssuanceDate      string `json:"issuance_date,omitempty"`
	CertificateNumber string `json:"certificate_number,omitempty"`
}

// IsEmpty reports whether no field is populated.
func (f SubjectFields) IsEmpty() bool {
	return f == SubjectFields{}
}
