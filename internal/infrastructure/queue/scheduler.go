package queue

import (
	"fmt"

	"github.com/hibiken/asynq"

	types "elib-backend/internal/shared"
)

// Scheduler registers the periodic maintenance tasks.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(
			asynq.RedisClientOpt{Addr: redisAddr},
			&asynq.SchedulerOpts{},
		),
	}
}

// RegisterCleanupJobs wires the hourly staging-directory sweep.
func (s *Scheduler) RegisterCleanupJobs() error {
	task := asynq.NewTask(types.TypeSweepUploads, nil)
	if _, err := s.scheduler.Register("@every 1h", task, asynq.Queue(types.QueueDefault)); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
