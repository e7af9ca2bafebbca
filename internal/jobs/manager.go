package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"dice-settle/internal/logger"
)

// Job is a background loop that returns once ctx is done.
type Job interface {
	Name() string
	Start(ctx context.Context)
}

type Manager struct {
	jobs []Job
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) Register(job Job) {
	m.jobs = append(m.jobs, job)
}

// Start runs every job and blocks until ctx is done and all jobs return.
// A panicking job is logged and stays stopped; the others keep running.
func (m *Manager) Start(ctx context.Context) {
	var wg sync.WaitGroup

	for _, job := range m.jobs {
		wg.Add(1)

		go func(j Job) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Error("job panicked", zap.String("job", j.Name()), zap.Any("panic", r))
				}
			}()

			logger.Log.Info("job started", zap.String("job", j.Name()))
			j.Start(ctx)
			logger.Log.Info("job stopped", zap.String("job", j.Name()))
		}(job)
	}

	<-ctx.Done()
	wg.Wait()
}
