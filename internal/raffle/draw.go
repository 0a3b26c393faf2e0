package raffle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Draw is one started spin over a snapshot of the pool.
type Draw struct {
	ID          string
	Pool        []models.ParticipantEntry
	WinnerIndex int
	StartedAt   time.Time
	Animator    *SpinAnimator
}

// Drawer wires pool loading, selection, animation and persistence. Draws
// are not mutually exclusive: two draws may run at once, and only the
// persister's duplicate checks keep them from committing the same order.
type Drawer struct {
	registry  *Registry
	selector  *Selector
	persister *WinnerPersister
	clock     clock.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewDrawer(reg *Registry, sel *Selector, p *WinnerPersister, clk clock.Clock, log *zap.Logger) *Drawer {
	return &Drawer{registry: reg, selector: sel, persister: p, clock: clk, log: log}
}

// WithMetrics attaches counters; m may be nil.
func (d *Drawer) WithMetrics(m *metrics.Metrics) *Drawer {
	d.metrics = m
	return d
}

// Start loads the current pool, picks the winner index once and starts
// the animation towards it. observe may be nil.
func (d *Drawer) Start(ctx context.Context, observe func(Frame)) (*Draw, error) {
	pool, err := d.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	idx, winner, err := d.selector.Pick(pool)
	if err != nil {
		return nil, err
	}

	anim := NewSpinAnimator(d.clock, d.persister, d.log).WithMetrics(d.metrics)
	if observe != nil {
		anim.OnFrame(observe)
	}
	draw := &Draw{
		ID:          uuid.NewString(),
		Pool:        pool,
		WinnerIndex: idx,
		StartedAt:   d.clock.Now(),
		Animator:    anim,
	}
	if err := anim.Start(ctx, pool, idx); err != nil {
		return nil, fmt.Errorf("start spin: %w", err)
	}

	d.log.Info("raffle draw started",
		zap.String("draw_id", draw.ID),
		zap.Int("pool_size", len(pool)),
		zap.String("winner_order_number", winner.OrderNumber),
	)
	return draw, nil
}
