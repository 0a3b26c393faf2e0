// Package jobs runs background work on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/raffle"
)

// ErrRunning is returned when a reconcile run is requested while another
// is still in flight.
var ErrRunning = errors.New("jobs: reconcile already running")

// OrderLister is the read side of the orders collaborator.
type OrderLister interface {
	ListAll(ctx context.Context) ([]models.Order, error)
}

// ReconcileJob pulls every order and backfills the raffle registry.
type ReconcileJob struct {
	source     OrderLister
	reconciler *raffle.Reconciler
	log        *zap.Logger

	mu      sync.Mutex
	running bool
}

func NewReconcileJob(src OrderLister, rec *raffle.Reconciler, log *zap.Logger) *ReconcileJob {
	return &ReconcileJob{source: src, reconciler: rec, log: log}
}

// Run performs one reconciliation. Overlapping runs are refused with ErrRunning.
func (j *ReconcileJob) Run(ctx context.Context) (raffle.ReconcileReport, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return raffle.ReconcileReport{}, ErrRunning
	}
	j.running = true
	j.mu.Unlock()
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	start := time.Now()
	list, err := j.source.ListAll(ctx)
	if err != nil {
		j.log.Error("reconcile: list orders failed", zap.Error(err))
		return raffle.ReconcileReport{}, fmt.Errorf("list orders: %w", err)
	}

	report, err := j.reconciler.Reconcile(ctx, list)
	fields := []zap.Field{
		zap.Int("orders", len(list)),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		j.log.Error("reconcile aborted", append(fields, zap.Error(err))...)
		return report, err
	}
	j.log.Info("reconcile finished", fields...)
	return report, nil
}

// Scheduler triggers a ReconcileJob on a cron spec.
type Scheduler struct {
	cron *cron.Cron
	job  *ReconcileJob
	log  *zap.Logger
}

// NewScheduler validates spec and registers job under it. Standard five
// field specs and descriptors such as "@every 15m" are accepted.
func NewScheduler(job *ReconcileJob, spec string, log *zap.Logger) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog)))

	s := &Scheduler{cron: c, job: job, log: log}
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if _, err := s.job.Run(context.Background()); errors.Is(err, ErrRunning) {
		s.log.Info("scheduled reconcile skipped, previous run still active")
	}
}

// Next reports when the job fires next. Zero until Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
