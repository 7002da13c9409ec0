package audit

import "context"

// Worker drains audit events from a channel into the trail. Collaborators
// that emit asynchronously (batch importers, replays) write to the inbox
// instead of calling Append inline.
type Worker struct {
	trail *Trail
	inbox <-chan Event
}

func NewWorker(trail *Trail, inbox <-chan Event) *Worker {
	return &Worker{trail: trail, inbox: inbox}
}

// Run consumes the inbox until the context is cancelled or an append fails.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.trail.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
