package handler

import (
	"strings"

	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /degrees.
type SubmitRequest struct {
	CertificateHash string           `json:"certificate_hash"`
	Subject         id.SubjectFields `json:"subject"`
}

// Validate validates the request. Hash format is enforced by the service;
// here we only reject the obviously empty.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CertificateHash = strings.TrimSpace(r.CertificateHash)
	if r.CertificateHash == "" {
		return dErrors.New(dErrors.CodeValidation, "certificate_hash is required")
	}
	if r.Subject.StudentName == "" {
		return dErrors.New(dErrors.CodeValidation, "subject.student_name is required")
	}
	if r.Subject.DegreeName == "" {
		return dErrors.New(dErrors.CodeValidation, "subject.degree_name is required")
	}
	return nil
}

// RevokeRequest is the HTTP request body for POST /degrees/{degreeID}/revoke.
type RevokeRequest struct {
	Reason string `json:"reason"`
}

// Validate validates the request.
func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}
