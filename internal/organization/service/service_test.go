package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestry/internal/organization/models"
	"attestry/internal/organization/store"
	"attestry/internal/policy"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

type DirectorySuite struct {
	suite.Suite
	directory *Directory
	authority id.OrgID
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.authority = id.NewOrgID()
	s.directory = NewDirectory(store.NewInMemory(), s.authority)
}

func (s *DirectorySuite) register(name string) *models.Organization {
	org, err := s.directory.Register(context.Background(), name, policy.MinimumStake)
	s.Require().NoError(err)
	return org
}

func (s *DirectorySuite) TestRegister() {
	s.Run("enrolls pending with valid stake", func() {
		org := s.register("Example University")
		s.Equal(models.OrgStatusPending, org.Status)
		s.Equal(policy.MinimumStake, org.Stake)
	})

	s.Run("rejects stake below the floor", func() {
		_, err := s.directory.Register(context.Background(), "Underfunded", policy.MinimumStake-1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects blank name as validation", func() {
		_, err := s.directory.Register(context.Background(), "   ", policy.MinimumStake)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects duplicate name as conflict", func() {
		s.register("Twice College")
		_, err := s.directory.Register(context.Background(), "twice college", policy.MinimumStake)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *DirectorySuite) TestLifecycleRequiresAuthority() {
	org := s.register("Example University")
	stranger := id.NewOrgID()

	_, err := s.directory.Approve(context.Background(), org.ID, stranger)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.directory.Blacklist(context.Background(), org.ID, "because", stranger)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *DirectorySuite) TestApproveThenSuspendThenReinstate() {
	ctx := context.Background()
	org := s.register("Example University")

	approved, err := s.directory.Approve(ctx, org.ID, s.authority)
	s.Require().NoError(err)
	s.Equal(models.OrgStatusActive, approved.Status)

	s.Run("double approve conflicts", func() {
		_, err := s.directory.Approve(ctx, org.ID, s.authority)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	suspended, err := s.directory.Suspend(ctx, org.ID, s.authority)
	s.Require().NoError(err)
	s.Equal(models.OrgStatusSuspended, suspended.Status)

	eligible, err := s.directory.IsEligibleIssuer(ctx, org.ID)
	s.Require().NoError(err)
	s.False(eligible)

	reinstated, err := s.directory.Reinstate(ctx, org.ID, s.authority)
	s.Require().NoError(err)
	s.Equal(models.OrgStatusActive, reinstated.Status)

	eligible, err = s.directory.IsEligibleIssuer(ctx, org.ID)
	s.Require().NoError(err)
	s.True(eligible)
}

func (s *DirectorySuite) TestBlacklist() {
	ctx := context.Background()
	org := s.register("Example University")

	s.Run("requires a reason", func() {
		_, err := s.directory.Blacklist(ctx, org.ID, "  ", s.authority)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	blacklisted, err := s.directory.Blacklist(ctx, org.ID, "stake fraud", s.authority)
	s.Require().NoError(err)
	s.Equal(models.OrgStatusBlacklisted, blacklisted.Status)
	s.Equal("stake fraud", blacklisted.BlacklistReason)

	s.Run("terminal: no way back", func() {
		_, err := s.directory.Approve(ctx, org.ID, s.authority)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, err = s.directory.Reinstate(ctx, org.ID, s.authority)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("blacklisted org cannot issue", func() {
		eligible, err := s.directory.IsEligibleIssuer(ctx, org.ID)
		s.Require().NoError(err)
		s.False(eligible)
	})
}

func (s *DirectorySuite) TestIsEligibleIssuer() {
	ctx := context.Background()

	s.Run("unknown org is ineligible without error", func() {
		eligible, err := s.directory.IsEligibleIssuer(ctx, id.NewOrgID())
		s.Require().NoError(err)
		s.False(eligible)
	})

	s.Run("pending org is ineligible", func() {
		org := s.register("Pending U")
		eligible, err := s.directory.IsEligibleIssuer(ctx, org.ID)
		s.Require().NoError(err)
		s.False(eligible)
	})
}

func (s *DirectorySuite) TestGetAndList() {
	ctx := context.Background()
	first := s.register("Alpha")
	s.register("Beta")

	got, err := s.directory.Get(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal("Alpha", got.Name)

	_, err = s.directory.Get(ctx, id.NewOrgID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	orgs, err := s.directory.List(ctx)
	s.Require().NoError(err)
	s.Len(orgs, 2)
}
