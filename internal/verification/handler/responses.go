package handler

import (
	"attestry/internal/verification"
)

// VerifyResponse is the HTTP response for POST /verify.
type VerifyResponse struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	DegreeID   string  `json:"degree_id,omitempty"`
	Method     string  `json:"method"`
}

// FromResult converts an engine decision to an HTTP response.
func FromResult(result verification.Result) *VerifyResponse {
	resp := &VerifyResponse{
		Verified:   result.Verified,
		Confidence: result.Confidence,
		Method:     string(result.Method),
	}
	if !result.DegreeID.IsNil() {
		resp.DegreeID = result.DegreeID.String()
	}
	return resp
}
