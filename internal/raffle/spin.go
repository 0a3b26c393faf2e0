package raffle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// SpinState is a state of the spin-down animation.
type SpinState string

const (
	SpinIdle     SpinState = "IDLE"
	SpinSpinning SpinState = "SPINNING"
	SpinLanding  SpinState = "LANDING"
	SpinRevealed SpinState = "REVEALED"
	SpinAborted  SpinState = "ABORTED"
)

// Terminal reports whether no further transition is possible.
func (s SpinState) Terminal() bool {
	return s == SpinRevealed || s == SpinAborted
}

const (
	initialTickPeriod = 150 * time.Millisecond
	maxTickPeriod     = 800 * time.Millisecond
	tickGrowth        = 1.05
	minSpinDuration   = 10 * time.Second
	settleDelay       = 500 * time.Millisecond
)

// WinnerSaver commits the revealed winner.
type WinnerSaver interface {
	Save(ctx context.Context, winner models.ParticipantEntry) Result
}

// Frame is what an observer sees after every transition or tick.
type Frame struct {
	State     SpinState               `json:"state"`
	Displayed int                     `json:"displayed"`
	Entry     models.ParticipantEntry `json:"entry"`
	Period    time.Duration           `json:"period"`
	Elapsed   time.Duration           `json:"elapsed"`
}

// SpinAnimator cycles a displayed index over the pool with a slowing tick
// and lands on the pre-picked winner. It is single-use: one pending timer
// at a time, never concurrent ticks.
type SpinAnimator struct {
	clock   clock.Clock
	saver   WinnerSaver
	log     *zap.Logger
	metrics *metrics.Metrics
	observe func(Frame)

	mu          sync.Mutex
	state       SpinState
	pool        []models.ParticipantEntry
	winnerIndex int
	displayed   int
	period      time.Duration
	startedAt   time.Time
	finishedAt  time.Time
	timer       clock.Timer
	ctx         context.Context
	stopWatch   func() bool
	saveResult  *Result
	done        chan struct{}
}

func NewSpinAnimator(clk clock.Clock, saver WinnerSaver, log *zap.Logger) *SpinAnimator {
	return &SpinAnimator{
		clock: clk,
		saver: saver,
		log:   log,
		state: SpinIdle,
		done:  make(chan struct{}),
	}
}

// WithMetrics attaches counters; m may be nil.
func (a *SpinAnimator) WithMetrics(m *metrics.Metrics) *SpinAnimator {
	a.metrics = m
	return a
}

// OnFrame registers fn to be called after every tick and transition.
// Must be set before Start.
func (a *SpinAnimator) OnFrame(fn func(Frame)) *SpinAnimator {
	a.observe = fn
	return a
}

// Start begins spinning towards pool[winnerIndex]. Cancelling ctx aborts
// the run; ctx is also handed to the saver on reveal.
func (a *SpinAnimator) Start(ctx context.Context, pool []models.ParticipantEntry, winnerIndex int) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	if winnerIndex < 0 || winnerIndex >= len(pool) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, winnerIndex, len(pool))
	}

	a.mu.Lock()
	if a.state != SpinIdle {
		a.mu.Unlock()
		return ErrNotIdle
	}
	a.pool = append([]models.ParticipantEntry(nil), pool...)
	a.winnerIndex = winnerIndex
	a.displayed = 0
	a.period = initialTickPeriod
	a.startedAt = a.clock.Now()
	a.ctx = ctx
	a.state = SpinSpinning
	a.timer = a.clock.AfterFunc(a.period, a.tick)
	a.stopWatch = context.AfterFunc(ctx, func() { a.Abort() })
	frame := a.frameLocked()
	a.mu.Unlock()

	a.emit(frame)

	a.log.Info("raffle spin started",
		zap.Int("pool_size", len(pool)),
		zap.String("winner_order_number", pool[winnerIndex].OrderNumber),
	)
	return nil
}

func (a *SpinAnimator) tick() {
	a.mu.Lock()
	if a.state != SpinSpinning {
		a.mu.Unlock()
		return
	}

	a.displayed = (a.displayed + 1) % len(a.pool)
	a.period = time.Duration(float64(a.period) * tickGrowth)
	if a.period > maxTickPeriod {
		a.period = maxTickPeriod
	}

	if a.period >= maxTickPeriod &&
		a.displayed == a.winnerIndex &&
		a.clock.Now().Sub(a.startedAt) >= minSpinDuration {
		a.state = SpinLanding
		a.timer = a.clock.AfterFunc(settleDelay, a.reveal)
	} else {
		a.timer = a.clock.AfterFunc(a.period, a.tick)
	}
	frame := a.frameLocked()
	a.mu.Unlock()

	a.emit(frame)
}

func (a *SpinAnimator) reveal() {
	a.mu.Lock()
	if a.state != SpinLanding {
		a.mu.Unlock()
		return
	}
	a.state = SpinRevealed
	a.timer = nil
	a.finishedAt = a.clock.Now()
	winner := a.pool[a.winnerIndex]
	ctx := a.ctx
	stopWatch := a.stopWatch
	frame := a.frameLocked()
	a.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	a.emit(frame)
	a.metrics.SpinFinished(string(SpinRevealed))

	res := a.saver.Save(ctx, winner)
	a.log.Info("raffle spin revealed",
		zap.String("order_number", winner.OrderNumber),
		zap.Duration("elapsed", frame.Elapsed),
		zap.String("save_code", string(res.Code)),
	)

	a.mu.Lock()
	a.saveResult = &res
	close(a.done)
	a.mu.Unlock()
}

// Abort cancels a run that has not yet revealed. It reports whether the
// call changed the state. An aborted run never saves a winner.
func (a *SpinAnimator) Abort() bool {
	a.mu.Lock()
	if a.state.Terminal() {
		a.mu.Unlock()
		return false
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	prev := a.state
	a.state = SpinAborted
	a.finishedAt = a.clock.Now()
	frame := a.frameLocked()
	stopWatch := a.stopWatch
	close(a.done)
	a.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}
	a.emit(frame)
	a.metrics.SpinFinished(string(SpinAborted))
	a.log.Info("raffle spin aborted", zap.String("from_state", string(prev)))
	return true
}

func (a *SpinAnimator) frameLocked() Frame {
	f := Frame{State: a.state, Displayed: a.displayed, Period: a.period}
	if len(a.pool) > 0 {
		f.Entry = a.pool[a.displayed]
	}
	if !a.startedAt.IsZero() {
		end := a.clock.Now()
		if !a.finishedAt.IsZero() {
			end = a.finishedAt
		}
		f.Elapsed = end.Sub(a.startedAt)
	}
	return f
}

func (a *SpinAnimator) emit(f Frame) {
	if a.observe != nil {
		a.observe(f)
	}
}

// Snapshot returns the current frame.
func (a *SpinAnimator) Snapshot() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

func (a *SpinAnimator) State() SpinState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Displayed is the pool index currently shown.
func (a *SpinAnimator) Displayed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.displayed
}

// Winner returns the revealed entry; ok is false until the reveal.
func (a *SpinAnimator) Winner() (models.ParticipantEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != SpinRevealed {
		return models.ParticipantEntry{}, false
	}
	return a.pool[a.winnerIndex], true
}

// SaveResult returns the persistence outcome once the reveal has saved.
func (a *SpinAnimator) SaveResult() (Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveResult == nil {
		return Result{}, false
	}
	return *a.saveResult, true
}

// Done is closed once the run is aborted or the revealed winner is saved.
func (a *SpinAnimator) Done() <-chan struct{} {
	return a.done
}
