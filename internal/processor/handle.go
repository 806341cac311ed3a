package processor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const handleBuffer = 64

// Handle tracks one submitted run.
type Handle struct {
	id      uuid.UUID
	events  chan Event
	done    chan struct{}
	cancel  context.CancelFunc
	summary Summary
	err     error
}

// Submit starts Run in the background and returns immediately. The caller
// must drain Events until it is closed; the channel is closed once the run
// ends, after the Summary when one is sent.
func Submit(ctx context.Context, job Job, opts Options) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:     uuid.New(),
		events: make(chan Event, handleBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	if opts.Logger != nil {
		opts.Logger = opts.Logger.With(zap.String("job_id", h.id.String()))
	}

	go func() {
		defer close(h.done)
		defer close(h.events)
		defer cancel()
		h.summary, h.err = Run(ctx, job, opts, h.events)
	}()

	return h
}

func (h *Handle) ID() uuid.UUID {
	return h.id
}

func (h *Handle) Events() <-chan Event {
	return h.events
}

// Cancel stops new items from starting. It is safe to call more than once.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its outcome.
func (h *Handle) Wait() (Summary, error) {
	<-h.done
	return h.summary, h.err
}
