package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

type countingPoller struct {
	calls atomic.Int32
}

func (c *countingPoller) Poll(ctx context.Context) (weather.Record, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return weather.Record{}, context.DeadlineExceeded
	}
	return weather.Record{}, nil
}

func TestScheduler_RunsImmediately(t *testing.T) {
	p := &countingPoller{}
	s := New(time.Hour, p)

	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunCycle_UsesDeadline(t *testing.T) {
	p := &countingPoller{}
	s := New(5*time.Second, p)

	s.runCycle(5 * time.Second)
	assert.Equal(t, int32(1), p.calls.Load())
}
