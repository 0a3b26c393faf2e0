package raffle

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/rng"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

var epoch = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx        context.Context
	clock      *clock.Manual
	store      *store.Memory
	config     *ConfigService
	registry   *Registry
	reconciler *Reconciler
	persister  *WinnerPersister
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	clk := clock.NewManual(epoch)
	st := store.NewMemory(clk)
	cfg := NewConfigService(st, log)
	reg := NewRegistry(st, cfg, clk, log)
	return &testEnv{
		ctx:        context.Background(),
		clock:      clk,
		store:      st,
		config:     cfg,
		registry:   reg,
		reconciler: NewReconciler(reg, cfg, log),
		persister:  NewWinnerPersister(st, clk, log),
	}
}

func (e *testEnv) drawer(idx int) *Drawer {
	return NewDrawer(e.registry, NewSelector(rng.Fixed(idx)), e.persister, e.clock, zap.NewNop())
}

func candidate(orderNumber string, items int) Candidate {
	return Candidate{
		OrderNumber: orderNumber,
		ClientName:  "Client " + orderNumber,
		ClientPhone: "11999990000",
		TotalItems:  items,
		TotalValue:  float64(items) * 10,
	}
}

func order(number string, qty ...int) models.Order {
	o := models.Order{
		Number:          number,
		DeliveryContact: &models.Contact{Name: "Client " + number, Phone: "11999990000"},
	}
	for _, q := range qty {
		o.Items = append(o.Items, models.OrderItem{Quantity: q})
		o.Total += float64(q) * 10
	}
	return o
}

func pool(numbers ...string) []models.ParticipantEntry {
	out := make([]models.ParticipantEntry, len(numbers))
	for i, n := range numbers {
		out[i] = models.ParticipantEntry{ID: "id-" + n, OrderNumber: n, ClientName: "Client " + n, ClientPhone: "11999990000"}
	}
	return out
}

// recordingSaver counts Save calls.
type recordingSaver struct {
	mu    sync.Mutex
	saved []models.ParticipantEntry
}

func (r *recordingSaver) Save(ctx context.Context, w models.ParticipantEntry) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, w)
	return succeeded("w-"+w.OrderNumber, "winner saved")
}

func (r *recordingSaver) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}
