package event

import (
	"sync"

	"go.uber.org/zap"

	"dice-settle/internal/logger"
)

type Handler func(payload interface{})

type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish runs every handler of event on its own goroutine.
func (b *Bus) Publish(event string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[event] {
		b.inflight.Add(1)
		go func(h Handler) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Error("event handler panicked", zap.String("event", event), zap.Any("panic", r))
				}
			}()
			h(payload)
		}(h)
	}
}

// Wait blocks until handlers started by earlier Publish calls return.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
