package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/raffle"
)

// finishedDrawTTL is how long a finished draw stays queryable.
const finishedDrawTTL = time.Hour

type drawRun struct {
	draw   *raffle.Draw
	cancel context.CancelFunc
}

// finishedAt reports when the run reached a terminal state.
func (r *drawRun) finishedAt() (time.Time, bool) {
	f := r.draw.Animator.Snapshot()
	if !f.State.Terminal() {
		return time.Time{}, false
	}
	return r.draw.StartedAt.Add(f.Elapsed), true
}

type drawView struct {
	ID          string                   `json:"id"`
	State       raffle.SpinState         `json:"state"`
	PoolSize    int                      `json:"poolSize"`
	Displayed   int                      `json:"displayed"`
	Current     models.ParticipantEntry  `json:"current"`
	Elapsed     string                   `json:"elapsed"`
	StartedAt   time.Time                `json:"startedAt"`
	Winner      *models.ParticipantEntry `json:"winner,omitempty"`
	WinnerSaved *raffle.Result           `json:"winnerSave,omitempty"`
}

func viewOf(d *raffle.Draw) drawView {
	f := d.Animator.Snapshot()
	v := drawView{
		ID:        d.ID,
		State:     f.State,
		PoolSize:  len(d.Pool),
		Displayed: f.Displayed,
		Current:   f.Entry,
		Elapsed:   f.Elapsed.String(),
		StartedAt: d.StartedAt,
	}
	if w, ok := d.Animator.Winner(); ok {
		v.Winner = &w
	}
	if res, ok := d.Animator.SaveResult(); ok {
		v.WinnerSaved = &res
	}
	return v
}

// StartDraw handles POST /api/v1/raffle/draws. The spin outlives the
// request; poll GET /draws/:id for progress.
func (a *Admin) StartDraw(c *gin.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	draw, err := a.drawer.Start(ctx, nil)
	if err != nil {
		cancel()
		if errors.Is(err, raffle.ErrEmptyPool) {
			c.JSON(http.StatusConflict, gin.H{"error": "No eligible participants to draw from"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start draw: " + err.Error()})
		return
	}

	run := &drawRun{draw: draw, cancel: cancel}
	a.mu.Lock()
	a.pruneLocked()
	a.draws[draw.ID] = run
	a.mu.Unlock()

	go func() {
		<-draw.Animator.Done()
		cancel()
	}()

	c.JSON(http.StatusCreated, viewOf(draw))
}

func (a *Admin) pruneLocked() {
	now := a.clock.Now()
	for id, run := range a.draws {
		if at, ok := run.finishedAt(); ok && now.Sub(at) > finishedDrawTTL {
			delete(a.draws, id)
		}
	}
}

func (a *Admin) lookupDraw(c *gin.Context) (*drawRun, bool) {
	a.mu.Lock()
	run, ok := a.draws[c.Param("id")]
	a.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draw not found"})
	}
	return run, ok
}

// GetDraw handles GET /api/v1/raffle/draws/:id
func (a *Admin) GetDraw(c *gin.Context) {
	run, ok := a.lookupDraw(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(run.draw))
}

// AbortDraw handles DELETE /api/v1/raffle/draws/:id. A draw that already
// revealed is left untouched.
func (a *Admin) AbortDraw(c *gin.Context) {
	run, ok := a.lookupDraw(c)
	if !ok {
		return
	}
	aborted := run.draw.Animator.Abort()
	if aborted {
		a.log.Info("raffle draw aborted by admin", zap.String("draw_id", run.draw.ID))
	}
	c.JSON(http.StatusOK, gin.H{"aborted": aborted, "draw": viewOf(run.draw)})
}
