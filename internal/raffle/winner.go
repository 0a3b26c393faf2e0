package raffle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

const (
	winnerRateWindow      = 5 * time.Second
	winnerDuplicateWindow = 24 * time.Hour
	winnerLoopWindow      = 60 * time.Second
	// winnerLoopLimit is the most winners the store may gain per window.
	winnerLoopLimit = 3
	saveCooldown    = 2 * time.Second
)

// WinnerPersister commits draw outcomes at most once per order per day.
// One instance should be shared by every draw in the process; its guards
// live in the instance, not in package state.
type WinnerPersister struct {
	store   store.WinnerStore
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	inProgress bool
	lastSaved  map[string]time.Time
}

func NewWinnerPersister(s store.WinnerStore, clk clock.Clock, log *zap.Logger) *WinnerPersister {
	return &WinnerPersister{
		store:     s,
		clock:     clk,
		log:       log,
		lastSaved: make(map[string]time.Time),
	}
}

// WithMetrics attaches counters; m may be nil.
func (p *WinnerPersister) WithMetrics(m *metrics.Metrics) *WinnerPersister {
	p.metrics = m
	return p
}

// Save persists winner unless a save is already running, the same order
// was saved moments ago, it already won within the last day, or winners
// are being written suspiciously fast.
func (p *WinnerPersister) Save(ctx context.Context, winner models.ParticipantEntry) Result {
	res := p.save(ctx, winner)
	p.metrics.WinnerSave(string(res.Code))

	fields := []zap.Field{
		zap.String("order_number", winner.OrderNumber),
		zap.String("code", string(res.Code)),
	}
	switch res.Code.Category() {
	case CategorySuccess:
		p.log.Info("raffle winner saved", append(fields, zap.String("id", res.ID))...)
	case CategoryStore:
		p.log.Error("raffle winner save failed", append(fields, zap.Error(res.Err))...)
	default:
		p.log.Warn("raffle winner save rejected", append(fields, zap.String("reason", res.Message))...)
	}
	return res
}

func (p *WinnerPersister) save(ctx context.Context, winner models.ParticipantEntry) Result {
	orderNumber := strings.TrimSpace(winner.OrderNumber)
	if orderNumber == "" {
		return rejected(CodeValidation, fmt.Sprintf("%s: winner has no order number", ErrValidation))
	}

	if res, ok := p.acquire(orderNumber); !ok {
		return res
	}

	now := p.clock.Now()
	existing, err := p.store.FindWinnerSince(ctx, orderNumber, now.Add(-winnerDuplicateWindow))
	switch {
	case err == nil:
		p.release()
		res := rejected(CodeAlreadyExists, "order already won within the last 24h")
		res.ID = existing.ID
		return res
	case !errors.Is(err, store.ErrNotFound):
		p.release()
		return storeFailure(err, "lookup recent winner")
	}

	recent, err := p.store.CountWinnersSince(ctx, now.Add(-winnerLoopWindow))
	if err != nil {
		p.release()
		return storeFailure(err, "count recent winners")
	}
	if recent >= winnerLoopLimit {
		p.release()
		return rejected(CodeLoopDetected, fmt.Sprintf("%d winners saved in the last %s", recent, winnerLoopWindow))
	}

	// From here on the flag is only cleared by the cool-down timer.
	defer p.clock.AfterFunc(saveCooldown, p.release)

	rec, err := p.store.CreateWinner(ctx, models.WinnerRecord{
		ClientName:  winner.ClientName,
		ClientPhone: winner.ClientPhone,
		OrderNumber: orderNumber,
		TotalItems:  winner.TotalItems,
		TotalValue:  winner.TotalValue,
	})
	if err != nil {
		return storeFailure(err, "create winner")
	}

	p.mu.Lock()
	p.lastSaved[orderNumber] = p.clock.Now()
	p.mu.Unlock()

	return succeeded(rec.ID, "winner saved")
}

// acquire checks the per-order rate limit, then the reentrancy flag, and
// sets the flag if both pass. A repeat of the order just saved reports
// RATE_LIMITED even while the flag is still cooling down.
func (p *WinnerPersister) acquire(orderNumber string) (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	for k, at := range p.lastSaved {
		if now.Sub(at) >= winnerRateWindow {
			delete(p.lastSaved, k)
		}
	}
	if at, ok := p.lastSaved[orderNumber]; ok {
		return rejected(CodeRateLimited, fmt.Sprintf("order saved %s ago", now.Sub(at))), false
	}

	if p.inProgress {
		return rejected(CodeInProgress, "another winner save is in progress"), false
	}

	p.inProgress = true
	return Result{}, true
}

func (p *WinnerPersister) release() {
	p.mu.Lock()
	p.inProgress = false
	p.mu.Unlock()
}

// Busy reports whether the reentrancy flag is currently set.
func (p *WinnerPersister) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inProgress
}

// List returns every winner record, newest first.
func (p *WinnerPersister) List(ctx context.Context) ([]models.WinnerRecord, error) {
	list, err := p.store.ListWinners(ctx)
	if err != nil {
		p.log.Error("failed to list raffle winners", zap.Error(err))
		return nil, fmt.Errorf("list winners: %w", err)
	}
	return list, nil
}
