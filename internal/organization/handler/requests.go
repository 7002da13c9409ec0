package handler

import (
	"strings"

	dErrors "attestry/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /organizations.
type RegisterRequest struct {
	Name  string `json:"name"`
	Stake int64  `json:"stake"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// BlacklistRequest is the HTTP request body for POST /organizations/{orgID}/blacklist.
type BlacklistRequest struct {
	Reason string `json:"reason"`
}

// Validate validates the request.
func (r *BlacklistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}
