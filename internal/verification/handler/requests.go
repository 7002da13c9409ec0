package handler

import (
	"strings"

	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

// VerifyRequest is the HTTP request body for POST /verify.
type VerifyRequest struct {
	CertificateHash string            `json:"certificate_hash"`
	ExtractedFields *id.SubjectFields `json:"extracted_fields,omitempty"`
}

// Validate validates the request. Full hash syntax is checked by the engine.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CertificateHash = strings.TrimSpace(r.CertificateHash)
	if r.CertificateHash == "" {
		return dErrors.New(dErrors.CodeValidation, "certificate_hash is required")
	}
	return nil
}
