package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus()
	var calls int32

	for i := 0; i < 3; i++ {
		bus.Subscribe(EventBetSettled, func(payload interface{}) {
			assert.Equal(t, "x", payload)
			atomic.AddInt32(&calls, 1)
		})
	}
	bus.Subscribe(EventBetPlaced, func(interface{}) {
		atomic.AddInt32(&calls, 100)
	})

	bus.Publish(EventBetSettled, "x")
	bus.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublishSurvivesPanic(t *testing.T) {
	bus := NewBus()
	var ok int32
	bus.Subscribe(EventBetRefunded, func(interface{}) { panic("boom") })
	bus.Subscribe(EventBetRefunded, func(interface{}) { atomic.StoreInt32(&ok, 1) })

	bus.Publish(EventBetRefunded, nil)
	bus.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ok))
}
