package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"kudos/internal/platform/metrics"
)

const JobResetCleanup = "password_reset_cleanup"

type Service struct {
	DB              *pgxpool.Pool
	Metrics         *metrics.Collector
	CleanupInterval time.Duration
	Workers         int
	queue           chan job
}

type job struct {
	Type string
	Run  func(context.Context) error
}

func New(db *pgxpool.Pool, collector *metrics.Collector) *Service {
	return &Service{
		DB:              db,
		Metrics:         collector,
		CleanupInterval: 6 * time.Hour,
		Workers:         2,
		queue:           make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go s.worker(ctx)
	}
	if s.DB != nil && s.CleanupInterval > 0 {
		go s.scheduleCleanup(ctx, s.CleanupInterval)
	}
}

// Enqueue hands run to a worker. When the queue is full the job is dropped.
func (s *Service) Enqueue(jobType string, run func(context.Context) error) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
		s.Metrics.RecordJob(false)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	started := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	err := j.Run(jobCtx)
	s.Metrics.RecordJob(err == nil)
	if err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "err", err, "durationMs", time.Since(started).Milliseconds())
		return
	}
	slog.Debug("job run completed", "jobType", j.Type, "durationMs", time.Since(started).Milliseconds())
}

func (s *Service) scheduleCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobResetCleanup, s.purgeResets)
		}
	}
}

func (s *Service) purgeResets(ctx context.Context) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM password_resets WHERE expires_at < now() OR used_at IS NOT NULL")
	if err != nil {
		return err
	}
	slog.Info("expired password resets purged", "deleted", tag.RowsAffected())
	return nil
}
