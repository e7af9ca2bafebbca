package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefunder struct {
	calls int32
}

func (c *countingRefunder) RefundExpired(context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return 1, nil
}

func TestManagerRunsRefundJobUntilCancel(t *testing.T) {
	r := &countingRefunder{}
	m := New()
	m.Register(NewRefundJob(r, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&r.calls) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}

type panicJob struct{}

func (panicJob) Name() string { return "panic" }

func (panicJob) Start(context.Context) { panic("boom") }

func TestManagerSurvivesPanickingJob(t *testing.T) {
	r := &countingRefunder{}
	m := New()
	m.Register(panicJob{})
	m.Register(NewRefundJob(r, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&r.calls) >= 1
	}, time.Second, 5*time.Millisecond)
}
