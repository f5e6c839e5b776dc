// Package jobs runs periodic maintenance on a gocron scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const jobTimeout = time.Minute

// TokenStore is the cleanup surface of the token service.
type TokenStore interface {
	CleanupExpired(ctx context.Context) (int64, error)
	CleanupResetCodes(ctx context.Context) (int64, error)
}

// Job is one named cleanup run.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

func CleanupJobs(tokens TokenStore) []Job {
	return []Job{
		{Name: "refresh-token-cleanup", Run: tokens.CleanupExpired},
		{Name: "reset-code-cleanup", Run: tokens.CleanupResetCodes},
	}
}

type Scheduler struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

func NewScheduler(log zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, log: log.With().Str("component", "jobs").Logger()}, nil
}

// Execute runs job once and logs the outcome.
func (s *Scheduler) Execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", job.Name).Msg("job failed")
		return
	}
	s.log.Info().Str("job", job.Name).Int64("removed", n).Dur("took", time.Since(start)).Msg("job finished")
}

// Register adds jobs to run every interval. A run still in progress when
// the next is due is rescheduled rather than overlapped.
func (s *Scheduler) Register(interval time.Duration, jobs ...Job) error {
	for _, job := range jobs {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() { s.Execute(job) }),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to register job %s: %w", job.Name, err)
		}
	}
	return nil
}

func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.log.Info().Int("jobs", len(s.scheduler.Jobs())).Msg("scheduler started")
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
