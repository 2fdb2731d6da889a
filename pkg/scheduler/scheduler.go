package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is the work a scheduled job performs.
type JobFunc func(context.Context) error

// JobSpec registers a job to run once per day at a fixed hour and minute.
type JobSpec struct {
	Name   string
	Hour   int
	Minute int
	Run    JobFunc
}

// Scheduler fires registered jobs at their daily slot. Each job runs in its
// own goroutine so a slow run never delays another job's slot. The scheduler
// is owned by the process entry point; there is no package-level instance.
type Scheduler struct {
	logger *zap.Logger
	tick   time.Duration

	mu      sync.Mutex
	specs   []JobSpec
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds a scheduler. A nil logger defaults to a no-op logger.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger, tick: time.Minute}
}

// RegisterJob adds a job. Must be called before Start.
func (s *Scheduler) RegisterJob(spec JobSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
}

// Start launches one watcher goroutine per registered job.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, spec := range s.specs {
		s.wg.Add(1)
		go s.watch(ctx, spec)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "jobs", len(s.specs))
}

// Stop cancels all watchers and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) watch(ctx context.Context, spec JobSpec) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	var lastRun time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !Due(spec, now, lastRun) {
				continue
			}
			lastRun = now
			s.logger.Sugar().Infow("job triggered", "job", spec.Name)
			if err := spec.Run(ctx); err != nil {
				s.logger.Sugar().Errorw("job failed", "job", spec.Name, "error", err)
			}
		}
	}
}

// Due reports whether the job's daily slot has been reached and the job has
// not already fired today.
func Due(spec JobSpec, now, lastRun time.Time) bool {
	if now.Hour() != spec.Hour || now.Minute() != spec.Minute {
		return false
	}
	if lastRun.IsZero() {
		return true
	}
	y1, m1, d1 := lastRun.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}
