package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/config"
	"github.com/ArowuTest/raffle-backend/internal/jobs"
	"github.com/ArowuTest/raffle-backend/internal/metrics"
	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/orders"
	"github.com/ArowuTest/raffle-backend/internal/raffle"
	"github.com/ArowuTest/raffle-backend/internal/rng"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

// app is the wired service graph shared by every subcommand.
type app struct {
	cfg     *config.AppConfig
	log     *zap.Logger
	db      *gorm.DB
	clock   clock.Clock
	metrics *metrics.Metrics

	config    *raffle.ConfigService
	registry  *raffle.Registry
	reconcile *jobs.ReconcileJob
	drawer    *raffle.Drawer
	winners   *raffle.WinnerPersister
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, "raffle-backend")
	if err != nil {
		return nil, err
	}

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := models.Migrate(db); err != nil {
		return nil, err
	}

	csprng, err := rng.NewCSPRNG()
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	st := store.NewGorm(db, clk)
	m := metrics.New()

	var src jobs.OrderLister
	if cfg.OrdersAPIURL != "" {
		src = orders.NewHTTPSource(cfg.OrdersAPIURL, cfg.OrdersAPIToken, log.Named("orders"))
	} else {
		src = orders.NewDocumentSource(db, log.Named("orders"))
	}

	raffleLog := log.Named("raffle")
	cfgSvc := raffle.NewConfigService(st, raffleLog)
	reg := raffle.NewRegistry(st, cfgSvc, clk, raffleLog).WithMetrics(m)
	rec := raffle.NewReconciler(reg, cfgSvc, raffleLog).WithMetrics(m)
	winners := raffle.NewWinnerPersister(st, clk, raffleLog).WithMetrics(m)
	drawer := raffle.NewDrawer(reg, raffle.NewSelector(csprng), winners, clk, raffleLog).WithMetrics(m)

	return &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		clock:     clk,
		metrics:   m,
		config:    cfgSvc,
		registry:  reg,
		reconcile: jobs.NewReconcileJob(src, rec, log.Named("reconcile")),
		drawer:    drawer,
		winners:   winners,
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = a.log.Sync()
}
