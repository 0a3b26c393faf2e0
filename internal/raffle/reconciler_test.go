package raffle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

// flakyParticipants fails lookups for one order number.
type flakyParticipants struct {
	*store.Memory
	failOrder string
}

func (f flakyParticipants) FindParticipantByOrder(ctx context.Context, orderNumber string) (models.ParticipantEntry, error) {
	if orderNumber == f.failOrder {
		return models.ParticipantEntry{}, errors.New("timeout")
	}
	return f.Memory.FindParticipantByOrder(ctx, orderNumber)
}

func TestReconciler_SecondRunAddsNothing(t *testing.T) {
	env := newTestEnv(t)
	orders := []models.Order{order("H1", 6), order("H2", 2), order("H3", 3, 3)}

	first, err := env.reconciler.Reconcile(env.ctx, orders)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)
	assert.Equal(t, 1, first.Skipped)
	assert.Zero(t, first.Errored)

	second, err := env.reconciler.Reconcile(env.ctx, orders)
	require.NoError(t, err)
	assert.Zero(t, second.Added)
	assert.Equal(t, 3, second.Skipped)

	list, err := env.store.ListParticipants(env.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReconciler_IsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	flaky := flakyParticipants{Memory: env.store, failOrder: "F2"}
	reg := NewRegistry(flaky, env.config, env.clock, zap.NewNop())
	rec := NewReconciler(reg, env.config, zap.NewNop())

	noContact := order("F3", 9)
	noContact.DeliveryContact = nil

	report, err := rec.Reconcile(env.ctx, []models.Order{order("F1", 6), order("F2", 6), noContact, order("F4", 7)})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 1, report.Errored)
	assert.Equal(t, 1, report.Skipped)

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, CodeStoreError, report.Outcomes[1].Code)
	assert.Equal(t, CodeValidation, report.Outcomes[2].Code)
	assert.Equal(t, CodeSuccess, report.Outcomes[3].Code)
}

func TestReconciler_UsesCurrentRule(t *testing.T) {
	env := newTestEnv(t)
	rule := models.RuleOrderValue
	th := 100.0
	_, err := env.config.Update(env.ctx, ConfigPatch{RuleType: &rule, Threshold: &th})
	require.NoError(t, err)

	// order() prices every item at 10.
	report, err := env.reconciler.Reconcile(env.ctx, []models.Order{order("V1", 9), order("V2", 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, CodeNotEligible, report.Outcomes[0].Code)
}

func TestReconciler_LoopGuardDefersLargeBackfill(t *testing.T) {
	env := newTestEnv(t)
	var orders []models.Order
	for i := 1; i <= 12; i++ {
		orders = append(orders, order(fmt.Sprintf("Q%02d", i), 6))
	}

	report, err := env.reconciler.Reconcile(env.ctx, orders)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Added)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, CodeLoopDetected, report.Outcomes[11].Code)

	env.clock.Advance(time.Minute)
	report, err = env.reconciler.Reconcile(env.ctx, orders)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
}

func TestReconciler_ConfigFailureAbortsBatch(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWith(errors.New("store down"))

	_, err := env.reconciler.Reconcile(env.ctx, []models.Order{order("X1", 6)})
	assert.Error(t, err)
}

func TestReconciler_StopsOnCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(env.ctx)
	_, err := env.config.Get(ctx)
	require.NoError(t, err)
	cancel()

	_, err = env.reconciler.Reconcile(ctx, []models.Order{order("Z1", 6)})
	assert.ErrorIs(t, err, context.Canceled)
}
