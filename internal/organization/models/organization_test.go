package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
)

func TestNewOrganization(t *testing.T) {
	now := time.Now()

	t.Run("starts pending", func(t *testing.T) {
		org, err := NewOrganization(id.NewOrgID(), "Example University", 5000, now)
		require.NoError(t, err)
		assert.Equal(t, OrgStatusPending, org.Status)
		assert.Equal(t, int64(5000), org.Stake)
		assert.False(t, org.IsEligibleIssuer())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOrganization(id.NewOrgID(), "", 5000, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects oversized name", func(t *testing.T) {
		_, err := NewOrganization(id.NewOrgID(), strings.Repeat("x", 129), 5000, now)
		require.Error(t, err)
	})

	t.Run("rejects negative stake", func(t *testing.T) {
		_, err := NewOrganization(id.NewOrgID(), "Example", -1, now)
		require.Error(t, err)
	})
}

func TestOrgStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    OrgStatus
		to      OrgStatus
		allowed bool
	}{
		{OrgStatusPending, OrgStatusActive, true},
		{OrgStatusPending, OrgStatusBlacklisted, true},
		{OrgStatusPending, OrgStatusSuspended, false},
		{OrgStatusActive, OrgStatusSuspended, true},
		{OrgStatusActive, OrgStatusBlacklisted, true},
		{OrgStatusActive, OrgStatusPending, false},
		{OrgStatusSuspended, OrgStatusActive, true},
		{OrgStatusSuspended, OrgStatusBlacklisted, true},
		{OrgStatusBlacklisted, OrgStatusActive, false},
		{OrgStatusBlacklisted, OrgStatusPending, false},
		{OrgStatusBlacklisted, OrgStatusSuspended, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrganization_Lifecycle(t *testing.T) {
	now := time.Now()

	t.Run("approve activates and makes eligible", func(t *testing.T) {
		org, _ := NewOrganization(id.NewOrgID(), "U", 5000, now)
		require.NoError(t, org.CanApprove())
		org.ApplyApproval(now)
		assert.Equal(t, OrgStatusActive, org.Status)
		assert.True(t, org.IsEligibleIssuer())
	})

	t.Run("suspend blocks issuing until reinstated", func(t *testing.T) {
		org, _ := NewOrganization(id.NewOrgID(), "U", 5000, now)
		org.ApplyApproval(now)
		require.NoError(t, org.CanSuspend())
		org.ApplySuspension(now)
		assert.False(t, org.IsEligibleIssuer())

		require.NoError(t, org.CanReinstate())
		org.ApplyReinstatement(now)
		assert.True(t, org.IsEligibleIssuer())
	})

	t.Run("blacklist is terminal", func(t *testing.T) {
		org, _ := NewOrganization(id.NewOrgID(), "U", 5000, now)
		org.ApplyApproval(now)
		require.NoError(t, org.CanBlacklist())
		org.ApplyBlacklist("stake fraud", now)

		assert.Equal(t, OrgStatusBlacklisted, org.Status)
		assert.Equal(t, "stake fraud", org.BlacklistReason)
		assert.Error(t, org.CanApprove())
		assert.Error(t, org.CanSuspend())
		assert.Error(t, org.CanReinstate())
		assert.Error(t, org.CanBlacklist())
	})

	t.Run("cannot suspend pending", func(t *testing.T) {
		org, _ := NewOrganization(id.NewOrgID(), "U", 5000, now)
		err := org.CanSuspend()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
