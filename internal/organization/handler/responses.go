package handler

import (
	"time"

	"attestry/internal/organization/models"
)

// OrganizationResponse is the HTTP representation of an organization.
type OrganizationResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	Stake           int64     `json:"stake"`
	BlacklistReason string    `json:"blacklist_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListResponse is the HTTP response for GET /organizations.
type ListResponse struct {
	Organizations []*OrganizationResponse `json:"organizations"`
}

// FromOrganization converts a domain organization to an HTTP response.
func FromOrganization(org *models.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:              org.ID.String(),
		Name:            org.Name,
		Status:          string(org.Status),
		Stake:           org.Stake,
		BlacklistReason: org.BlacklistReason,
		CreatedAt:       org.CreatedAt,
		UpdatedAt:       org.UpdatedAt,
	}
}
