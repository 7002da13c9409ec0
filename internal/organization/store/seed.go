package store

import (
	"context"
	"errors"

	"attestry/internal/organization/models"
	"attestry/internal/policy"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

// seedStore is the slice of the organization store bootstrap needs.
type seedStore interface {
	CreateIfNameAvailable(ctx context.Context, org *models.Organization) error
	FindByName(ctx context.Context, name string) (*models.Organization, error)
}

// EnsureAuthority resolves the attestation authority organization by name,
// creating it active when missing. Safe to call from multiple replicas: the
// loser of a concurrent create re-reads the winner's row.
func EnsureAuthority(ctx context.Context, orgs seedStore, name string) (id.OrgID, error) {
	existing, err := orgs.FindByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.OrgID{}, err
	}

	now := requestcontext.Now(ctx)
	org, err := models.NewOrganization(id.NewOrgID(), name, policy.MinimumStake, now)
	if err != nil {
		return id.OrgID{}, err
	}
	org.ApplyApproval(now)

	if err := orgs.CreateIfNameAvailable(ctx, org); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			winner, err := orgs.FindByName(ctx, name)
			if err != nil {
				return id.OrgID{}, err
			}
			return winner.ID, nil
		}
		return id.OrgID{}, err
	}
	return org.ID, nil
}
