package raffle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/store"
)

// ConfigPatch carries a partial config update; nil fields are left unchanged.
type ConfigPatch struct {
	Active    *bool            `json:"active,omitempty"`
	RuleType  *models.RuleType `json:"ruleType,omitempty"`
	Threshold *float64         `json:"threshold,omitempty"`
}

// ConfigService reads and writes the singleton eligibility rule.
type ConfigService struct {
	store store.ConfigStore
	log   *zap.Logger
}

func NewConfigService(s store.ConfigStore, log *zap.Logger) *ConfigService {
	return &ConfigService{store: s, log: log}
}

// Get returns the persisted config, creating the default on first read.
func (c *ConfigService) Get(ctx context.Context) (models.RaffleConfig, error) {
	cfg, err := c.store.GetConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.RaffleConfig{}, fmt.Errorf("get raffle config: %w", err)
	}

	cfg, err = c.store.SaveConfig(ctx, models.DefaultRaffleConfig())
	if err != nil {
		return models.RaffleConfig{}, fmt.Errorf("create default raffle config: %w", err)
	}
	c.log.Info("raffle config initialised with defaults",
		zap.String("rule_type", string(cfg.RuleType)),
		zap.Float64("threshold", cfg.Threshold),
	)
	return cfg, nil
}

// Update merges patch onto the current config, validates and persists it.
func (c *ConfigService) Update(ctx context.Context, patch ConfigPatch) (models.RaffleConfig, error) {
	cfg, err := c.Get(ctx)
	if err != nil {
		return models.RaffleConfig{}, err
	}

	if patch.Active != nil {
		cfg.Active = *patch.Active
	}
	if patch.RuleType != nil {
		cfg.RuleType = *patch.RuleType
	}
	if patch.Threshold != nil {
		cfg.Threshold = *patch.Threshold
	}

	if !cfg.RuleType.Valid() {
		c.log.Warn("raffle config rejected", zap.String("rule_type", string(cfg.RuleType)))
		return models.RaffleConfig{}, fmt.Errorf("%w: unknown rule type %q", ErrValidation, cfg.RuleType)
	}
	if cfg.Threshold <= 0 {
		c.log.Warn("raffle config rejected", zap.Float64("threshold", cfg.Threshold))
		return models.RaffleConfig{}, fmt.Errorf("%w: threshold must be greater than zero, got %g", ErrValidation, cfg.Threshold)
	}

	saved, err := c.store.SaveConfig(ctx, cfg)
	if err != nil {
		c.log.Error("failed to save raffle config", zap.Error(err))
		return models.RaffleConfig{}, fmt.Errorf("update raffle config: %w", err)
	}
	c.log.Info("raffle config updated",
		zap.Bool("active", saved.Active),
		zap.String("rule_type", string(saved.RuleType)),
		zap.Float64("threshold", saved.Threshold),
	)
	return saved, nil
}

// SetActive pauses or resumes the promotion.
func (c *ConfigService) SetActive(ctx context.Context, active bool) (models.RaffleConfig, error) {
	return c.Update(ctx, ConfigPatch{Active: &active})
}
