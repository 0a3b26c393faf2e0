package raffle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

const (
	participantLoopWindow = 60 * time.Second
	// participantLoopLimit is the most entries the store may gain per window.
	participantLoopLimit = 10
)

// Registry persists eligible participant entries, at most one per order.
type Registry struct {
	store   store.ParticipantStore
	config  *ConfigService
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRegistry(s store.ParticipantStore, cfg *ConfigService, clk clock.Clock, log *zap.Logger) *Registry {
	return &Registry{store: s, config: cfg, clock: clk, log: log}
}

// WithMetrics attaches counters; m may be nil.
func (r *Registry) WithMetrics(m *metrics.Metrics) *Registry {
	r.metrics = m
	return r
}

// Add registers c if it is valid, new, not part of a write storm, and
// eligible under the current config.
func (r *Registry) Add(ctx context.Context, c Candidate) Result {
	c = c.normalized()
	res := r.add(ctx, c)
	r.metrics.Registration(string(res.Code))

	fields := []zap.Field{
		zap.String("order_number", c.OrderNumber),
		zap.String("code", string(res.Code)),
	}
	switch res.Code.Category() {
	case CategorySuccess:
		r.log.Info("raffle participant registered", append(fields, zap.String("id", res.ID))...)
	case CategoryStore:
		r.log.Error("raffle participant registration failed", append(fields, zap.Error(res.Err))...)
	case CategoryValidation:
		r.log.Warn("raffle participant rejected", append(fields, zap.String("reason", res.Message))...)
	default:
		r.log.Debug("raffle participant skipped", append(fields, zap.String("reason", res.Message))...)
	}
	return res
}

func (r *Registry) add(ctx context.Context, c Candidate) Result {
	if err := c.Validate(); err != nil {
		return rejected(CodeValidation, err.Error())
	}

	existing, err := r.store.FindParticipantByOrder(ctx, c.OrderNumber)
	switch {
	case err == nil:
		res := rejected(CodeAlreadyExists, "order is already registered")
		res.ID = existing.ID
		return res
	case !errors.Is(err, store.ErrNotFound):
		return storeFailure(err, "lookup participant")
	}

	recent, err := r.store.CountParticipantsSince(ctx, r.clock.Now().Add(-participantLoopWindow))
	if err != nil {
		return storeFailure(err, "count recent participants")
	}
	if recent >= participantLoopLimit {
		return rejected(CodeLoopDetected, fmt.Sprintf("%d participants registered in the last %s", recent, participantLoopWindow))
	}

	cfg, err := r.config.Get(ctx)
	if err != nil {
		return storeFailure(err, "load raffle config")
	}
	if !cfg.Active {
		return rejected(CodePromotionPaused, "promotion is paused")
	}
	if ok, reason := IsEligible(c.Summary(), cfg); !ok {
		return rejected(CodeNotEligible, reason)
	}

	created, err := r.store.CreateParticipant(ctx, c.entry())
	switch {
	case errors.Is(err, store.ErrDuplicate):
		// Lost a race with a concurrent add of the same order.
		res := rejected(CodeAlreadyExists, "order is already registered")
		if existing, err := r.store.FindParticipantByOrder(ctx, c.OrderNumber); err == nil {
			res.ID = existing.ID
		}
		return res
	case err != nil:
		return storeFailure(err, "create participant")
	}
	return succeeded(created.ID, "participant registered")
}

// RegisterOrder is the automatic path taken on order submission.
func (r *Registry) RegisterOrder(ctx context.Context, o models.Order) Result {
	c, err := CandidateFromOrder(o)
	if err != nil {
		r.metrics.Registration(string(CodeValidation))
		r.log.Warn("raffle participant rejected",
			zap.String("order_number", o.Number),
			zap.String("code", string(CodeValidation)),
			zap.Error(err),
		)
		return rejected(CodeValidation, err.Error())
	}
	return r.Add(ctx, c)
}

// Exists reports whether orderNumber already has an entry.
func (r *Registry) Exists(ctx context.Context, orderNumber string) (bool, error) {
	_, err := r.store.FindParticipantByOrder(ctx, orderNumber)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// List returns entries newest first, keeping only those eligible under
// the rule in force now (not the rule at insertion time).
func (r *Registry) List(ctx context.Context) ([]models.ParticipantEntry, error) {
	cfg, err := r.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	all, err := r.store.ListParticipants(ctx)
	if err != nil {
		r.log.Error("failed to list raffle participants", zap.Error(err))
		return nil, fmt.Errorf("list participants: %w", err)
	}

	pool := make([]models.ParticipantEntry, 0, len(all))
	for _, e := range all {
		if ok, _ := IsEligible(Summary{ItemCount: e.TotalItems, TotalValue: e.TotalValue}, cfg); ok {
			pool = append(pool, e)
		}
	}
	return pool, nil
}

// ClearAll deletes every entry and returns how many were removed.
func (r *Registry) ClearAll(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteAllParticipants(ctx)
	if err != nil {
		r.log.Error("failed to clear raffle participants", zap.Error(err))
		return 0, fmt.Errorf("clear participants: %w", err)
	}
	r.log.Info("raffle participants cleared", zap.Int64("count", n))
	return n, nil
}
