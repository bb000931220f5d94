package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const JobNotificationEmail = "notification_email"

// DefaultDrainTimeout bounds each job still queued when the workers stop.
const DefaultDrainTimeout = 30 * time.Second

var (
	ErrQueueFull    = errors.New("job queue full")
	ErrQueueStopped = errors.New("job queue stopped")
)

// Service runs jobs on background workers. When DB is set every run is
// recorded in job_runs. Jobs still queued when the workers stop are run
// under a fresh context bounded by DrainTimeout.
type Service struct {
	DB           *pgxpool.Pool
	DrainTimeout time.Duration
	queue        chan job
	workers      int
	stopped      atomic.Bool
	wg           sync.WaitGroup
}

type job struct {
	ID        string
	Type      string
	SubjectID string
	Run       func(context.Context) error
}

func New(db *pgxpool.Pool, queueSize, workers int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		DB:           db,
		DrainTimeout: DefaultDrainTimeout,
		queue:        make(chan job, queueSize),
		workers:      workers,
	}
}

func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Wait blocks until every worker has exited after ctx was cancelled.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType, subjectID string, run func(context.Context) error) error {
	if s.stopped.Load() {
		return ErrQueueStopped
	}
	select {
	case s.queue <- job{ID: uuid.NewString(), Type: jobType, SubjectID: subjectID, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "subjectId", subjectID)
		return ErrQueueFull
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.stopped.Store(true)
			s.drain(ctx)
			return
		case j := <-s.queue:
			if ctx.Err() != nil {
				s.runDetached(ctx, j)
				continue
			}
			s.handle(ctx, j)
		}
	}
}

func (s *Service) drain(ctx context.Context) {
	for {
		select {
		case j := <-s.queue:
			s.runDetached(ctx, j)
		default:
			return
		}
	}
}

// runDetached runs a job picked up after shutdown began, so its own context
// is not already cancelled.
func (s *Service) runDetached(ctx context.Context, j job) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout())
	defer cancel()
	s.handle(runCtx, j)
}

func (s *Service) handle(ctx context.Context, j job) {
	if err := s.runJob(ctx, j); err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "subjectId", j.SubjectID, "err", err)
	}
}

func (s *Service) drainTimeout() time.Duration {
	if s.DrainTimeout > 0 {
		return s.DrainTimeout
	}
	return DefaultDrainTimeout
}

func (s *Service) runJob(ctx context.Context, j job) error {
	s.recordStart(ctx, j)
	err := j.Run(ctx)
	s.recordFinish(ctx, j, err)
	return err
}

func (s *Service) recordStart(ctx context.Context, j job) {
	if s.DB == nil {
		return
	}
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, subject_id, status)
    VALUES ($1,$2,$3,$4)
  `, j.ID, j.Type, j.SubjectID, "running"); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}
}

func (s *Service) recordFinish(ctx context.Context, j job, runErr error) {
	if s.DB == nil {
		return
	}
	status := "completed"
	var errText any
	if runErr != nil {
		status = "failed"
		errText = runErr.Error()
	}
	if _, err := s.DB.Exec(context.WithoutCancel(ctx), `
    UPDATE job_runs
    SET status = $1, error = $2, completed_at = now()
    WHERE id = $3
  `, status, errText, j.ID); err != nil {
		slog.Warn("job run update failed", "err", err)
	}
}
