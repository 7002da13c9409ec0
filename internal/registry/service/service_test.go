package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestry/internal/audit"
	"attestry/internal/registry/store"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/requestcontext"
)

type stubDirectory struct {
	authority id.OrgID
	eligible  map[id.OrgID]bool
}

func (d *stubDirectory) IsEligibleIssuer(_ context.Context, orgID id.OrgID) (bool, error) {
	return d.eligible[orgID], nil
}

func (d *stubDirectory) Authority() id.OrgID { return d.authority }

type capturingTrail struct {
	mu     sync.Mutex
	events []audit.Event
}

func (t *capturingTrail) Append(_ context.Context, event audit.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
	return nil
}

type RegistrySuite struct {
	suite.Suite
	registry  *Registry
	directory *stubDirectory
	trail     *capturingTrail
	issuer    id.OrgID
	subject   id.SubjectFields
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.issuer = id.NewOrgID()
	s.directory = &stubDirectory{
		authority: id.NewOrgID(),
		eligible:  map[id.OrgID]bool{s.issuer: true},
	}
	s.trail = &capturingTrail{}
	s.registry = NewRegistry(store.NewInMemory(), s.directory, s.trail)
	s.subject = id.SubjectFields{
		StudentName: "Jane Doe",
		DegreeName:  "BSc Computer Science",
	}
}

func (s *RegistrySuite) hash(n int) string {
	return fmt.Sprintf("%064x", n)
}

func (s *RegistrySuite) TestSubmit() {
	ctx := context.Background()

	s.Run("eligible issuer succeeds", func() {
		degreeID, err := s.registry.Submit(ctx, s.issuer, s.hash(1), s.subject)
		s.Require().NoError(err)
		s.False(degreeID.IsNil())

		record, err := s.registry.Lookup(ctx, s.hash(1))
		s.Require().NoError(err)
		s.Equal(s.issuer, record.IssuerOrgID)
		s.Equal(int64(0), record.VerificationCount)
	})

	s.Run("malformed hash rejected", func() {
		_, err := s.registry.Submit(ctx, s.issuer, "xyz", s.subject)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("ineligible issuer forbidden", func() {
		_, err := s.registry.Submit(ctx, id.NewOrgID(), s.hash(2), s.subject)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("duplicate hash conflicts", func() {
		_, err := s.registry.Submit(ctx, s.issuer, s.hash(1), s.subject)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

// TestSubmit_ConcurrentSameHash drives the uniqueness invariant through the
// service: exactly one of the racing submissions wins, the rest conflict.
func (s *RegistrySuite) TestSubmit_ConcurrentSameHash() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.registry.Submit(ctx, s.issuer, s.hash(99), s.subject)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *RegistrySuite) TestLookup() {
	ctx := context.Background()

	s.Run("unknown hash not found", func() {
		_, err := s.registry.Lookup(ctx, s.hash(404))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed hash invalid input", func() {
		_, err := s.registry.Lookup(ctx, "nope")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *RegistrySuite) TestRevoke() {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	degreeID, err := s.registry.Submit(ctx, s.issuer, s.hash(5), s.subject)
	s.Require().NoError(err)

	s.Run("non-authority unauthorized", func() {
		_, err := s.registry.Revoke(ctx, degreeID, "fraud", s.issuer)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("reason required", func() {
		_, err := s.registry.Revoke(ctx, degreeID, "  ", s.directory.Authority())
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("authority revokes once", func() {
		record, err := s.registry.Revoke(ctx, degreeID, "degree mill", s.directory.Authority())
		s.Require().NoError(err)
		s.True(record.IsRevoked())
		s.Equal("degree mill", record.RevokeReason)
		s.Require().NotNil(record.RevokedAt)
		s.Equal(now, *record.RevokedAt)

		s.Require().Len(s.trail.events, 1)
		event := s.trail.events[0]
		s.Equal(audit.ActionDegreeRevoked, event.Action)
		s.Equal(s.directory.Authority(), event.ActorOrgID)
		s.Equal("degree mill", event.Reason)
	})

	s.Run("second revoke conflicts and appends nothing", func() {
		_, err := s.registry.Revoke(ctx, degreeID, "again", s.directory.Authority())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Len(s.trail.events, 1)
	})

	s.Run("unknown degree not found", func() {
		_, err := s.registry.Revoke(ctx, id.NewDegreeID(), "fraud", s.directory.Authority())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RegistrySuite) TestRecordVerification() {
	ctx := context.Background()
	degreeID, err := s.registry.Submit(ctx, s.issuer, s.hash(6), s.subject)
	s.Require().NoError(err)

	s.Run("counter grows monotonically", func() {
		for i := 1; i <= 3; i++ {
			s.Require().NoError(s.registry.RecordVerification(ctx, degreeID))
			record, err := s.registry.GetByID(ctx, degreeID)
			s.Require().NoError(err)
			s.Equal(int64(i), record.VerificationCount)
			s.NotNil(record.LastVerifiedAt)
		}
	})

	s.Run("revoked degree conflicts", func() {
		_, err := s.registry.Revoke(ctx, degreeID, "fraud", s.directory.Authority())
		s.Require().NoError(err)

		err = s.registry.RecordVerification(ctx, degreeID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		record, err := s.registry.GetByID(ctx, degreeID)
		s.Require().NoError(err)
		s.Equal(int64(3), record.VerificationCount, "count frozen after revocation")
	})

	s.Run("unknown degree not found", func() {
		err := s.registry.RecordVerification(ctx, id.NewDegreeID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
