package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/jobs"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/raffle"
)

// Admin serves the raffle control surface. Authentication happens in
// front of it.
type Admin struct {
	config    *raffle.ConfigService
	registry  *raffle.Registry
	reconcile *jobs.ReconcileJob
	drawer    *raffle.Drawer
	winners   *raffle.WinnerPersister
	clock     clock.Clock
	log       *zap.Logger

	mu    sync.Mutex
	draws map[string]*drawRun
}

func NewAdmin(
	cfg *raffle.ConfigService,
	reg *raffle.Registry,
	rec *jobs.ReconcileJob,
	drawer *raffle.Drawer,
	winners *raffle.WinnerPersister,
	clk clock.Clock,
	log *zap.Logger,
) *Admin {
	return &Admin{
		config:    cfg,
		registry:  reg,
		reconcile: rec,
		drawer:    drawer,
		winners:   winners,
		clock:     clk,
		log:       log,
		draws:     make(map[string]*drawRun),
	}
}

// Register mounts the admin routes on rg.
func (a *Admin) Register(rg *gin.RouterGroup) {
	r := rg.Group("/raffle")
	{
		r.GET("/config", a.GetConfig)
		r.PUT("/config", a.UpdateConfig)
		r.POST("/config/active", a.SetActive)

		r.GET("/participants", a.ListParticipants)
		r.POST("/participants", a.AddParticipant)
		r.DELETE("/participants", a.ClearParticipants)
		r.POST("/reconcile", a.Reconcile)

		r.POST("/draws", a.StartDraw)
		r.GET("/draws/:id", a.GetDraw)
		r.DELETE("/draws/:id", a.AbortDraw)

		r.GET("/winners", a.ListWinners)
	}
}

// NewRouter builds the engine: admin API under /api/v1 behind the rate
// limiter, plus /metrics and /healthz. frontendURL enables CORS for the
// admin UI when set.
func NewRouter(a *Admin, limiter *RateLimiter, m *metrics.Metrics, frontendURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if frontendURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{frontendURL},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	a.Register(api)
	return r
}

// resultStatus maps a service outcome to an HTTP status. Eligibility and
// concurrency rejections are expected outcomes and carry their code in a
// 200 body.
func resultStatus(res raffle.Result) int {
	switch res.Code.Category() {
	case raffle.CategorySuccess:
		return http.StatusCreated
	case raffle.CategoryValidation:
		return http.StatusBadRequest
	case raffle.CategoryStore:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// GetConfig handles GET /api/v1/raffle/config
func (a *Admin) GetConfig(c *gin.Context) {
	cfg, err := a.config.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load raffle config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type configPayload struct {
	Active    *bool            `json:"active"`
	RuleType  *models.RuleType `json:"ruleType"`
	Threshold *float64         `json:"threshold"`
}

// UpdateConfig handles PUT /api/v1/raffle/config
func (a *Admin) UpdateConfig(c *gin.Context) {
	var in configPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	cfg, err := a.config.Update(c.Request.Context(), raffle.ConfigPatch{
		Active:    in.Active,
		RuleType:  in.RuleType,
		Threshold: in.Threshold,
	})
	switch {
	case errors.Is(err, raffle.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update raffle config: " + err.Error()})
	default:
		c.JSON(http.StatusOK, cfg)
	}
}

// SetActive handles POST /api/v1/raffle/config/active
func (a *Admin) SetActive(c *gin.Context) {
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	cfg, err := a.config.SetActive(c.Request.Context(), *in.Active)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update raffle config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}
