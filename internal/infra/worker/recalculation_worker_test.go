package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type countingRecalculator struct {
	calls atomic.Int32
	err   error
}

func (c *countingRecalculator) Execute(_ context.Context, input usecase.RecalculateInput) (*usecase.RecalculateOutput, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &usecase.RecalculateOutput{RunID: "run"}, nil
}

func TestRecalculationWorkerRunsOnEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &countingRecalculator{}
	done := make(chan struct{})

	go func() {
		NewRecalculationWorker(rec, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return rec.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRecalculationWorkerSurvivesFailures(t *testing.T) {
	for _, err := range []error{
		&usecase.DomainError{Code: usecase.CodeRecalculationRunning, Message: "busy"},
		errors.New("database down"),
	} {
		rec := &countingRecalculator{err: err}
		w := NewRecalculationWorker(rec, time.Hour)

		assert.NotPanics(t, func() { w.run(context.Background()) })
		assert.Equal(t, int32(1), rec.calls.Load())
	}
}
