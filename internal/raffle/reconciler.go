package raffle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// OrderOutcome records what reconciliation did with one order.
type OrderOutcome struct {
	OrderNumber string `json:"orderNumber"`
	Code        Code   `json:"code"`
	Message     string `json:"message,omitempty"`
}

// ReconcileReport summarises one reconciliation batch.
type ReconcileReport struct {
	Added    int            `json:"added"`
	Skipped  int            `json:"skipped"`
	Errored  int            `json:"errored"`
	Outcomes []OrderOutcome `json:"outcomes"`
}

// Reconciler backfills historical orders into the registry.
type Reconciler struct {
	registry *Registry
	config   *ConfigService
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewReconciler(reg *Registry, cfg *ConfigService, log *zap.Logger) *Reconciler {
	return &Reconciler{registry: reg, config: cfg, log: log}
}

// WithMetrics attaches counters; m may be nil.
func (r *Reconciler) WithMetrics(m *metrics.Metrics) *Reconciler {
	r.metrics = m
	return r
}

// Reconcile registers every order that is missing from the registry and
// eligible under the current config. A failing order never aborts the
// batch; running it again over the same orders adds nothing.
func (r *Reconciler) Reconcile(ctx context.Context, orders []models.Order) (ReconcileReport, error) {
	report := ReconcileReport{Outcomes: make([]OrderOutcome, 0, len(orders))}

	cfg, err := r.config.Get(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: %w", err)
	}

	for _, o := range orders {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := r.reconcileOne(ctx, o, cfg)
		report.Outcomes = append(report.Outcomes, out)

		switch out.Code.Category() {
		case CategorySuccess:
			report.Added++
			r.metrics.Reconciled("added")
		case CategoryStore:
			report.Errored++
			r.metrics.Reconciled("errored")
		default:
			report.Skipped++
			r.metrics.Reconciled("skipped")
		}
	}

	r.log.Info("raffle reconciliation finished",
		zap.Int("orders", len(orders)),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored),
	)
	return report, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, o models.Order, cfg models.RaffleConfig) OrderOutcome {
	out := OrderOutcome{OrderNumber: o.Number}

	c, err := CandidateFromOrder(o)
	if err != nil {
		r.log.Info("reconcile skipped order", zap.String("order_number", o.Number), zap.Error(err))
		out.Code, out.Message = CodeValidation, err.Error()
		return out
	}
	out.OrderNumber = c.OrderNumber

	exists, err := r.registry.Exists(ctx, c.OrderNumber)
	if err != nil {
		r.log.Error("reconcile lookup failed", zap.String("order_number", c.OrderNumber), zap.Error(err))
		out.Code, out.Message = CodeStoreError, err.Error()
		return out
	}
	if exists {
		out.Code = CodeAlreadyExists
		return out
	}

	if ok, reason := IsEligible(c.Summary(), cfg); !ok {
		out.Code, out.Message = CodeNotEligible, reason
		return out
	}

	res := r.registry.Add(ctx, c)
	out.Code, out.Message = res.Code, res.Message
	return out
}
