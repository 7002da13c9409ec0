package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attestry/internal/audit"
	"attestry/internal/audit/store"
	id "attestry/pkg/domain"
)

func TestWorker_DrainsInboxIntoTrail(t *testing.T) {
	trail := audit.NewTrail(store.NewInMemory())
	inbox := make(chan audit.Event, 3)
	worker := audit.NewWorker(trail, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	degreeID := id.NewDegreeID()
	for i := 0; i < 3; i++ {
		inbox <- audit.Event{
			DegreeID:  degreeID,
			Action:    audit.ActionVerificationPerformed,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}
	}

	require.Eventually(t, func() bool {
		events, err := trail.QueryByDegree(context.Background(), degreeID)
		return err == nil && len(events) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorker_StopsOnAppendFailure(t *testing.T) {
	trail := audit.NewTrail(failingStore{})
	inbox := make(chan audit.Event, 1)
	worker := audit.NewWorker(trail, inbox)

	inbox <- audit.Event{DegreeID: id.NewDegreeID()}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := worker.Run(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded, "the append failure surfaces, not the timeout")
}
