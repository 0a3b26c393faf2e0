package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Gorm is the postgres-backed Store.
type Gorm struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewGorm wraps an open gorm handle. clk stamps CreatedAt/UpdatedAt.
func NewGorm(db *gorm.DB, clk clock.Clock) *Gorm {
	return &Gorm{db: db, clock: clk}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate needs the handle opened with TranslateError so the driver's
// unique violation surfaces as gorm.ErrDuplicatedKey.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (g *Gorm) GetConfig(ctx context.Context) (models.RaffleConfig, error) {
	var cfg models.RaffleConfig
	if err := g.db.WithContext(ctx).First(&cfg, "id = ?", models.RaffleConfigID).Error; err != nil {
		return models.RaffleConfig{}, notFound(err)
	}
	return cfg, nil
}

func (g *Gorm) SaveConfig(ctx context.Context, cfg models.RaffleConfig) (models.RaffleConfig, error) {
	cfg.ID = models.RaffleConfigID
	cfg.UpdatedAt = g.clock.Now().UTC()
	if err := g.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return models.RaffleConfig{}, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

func (g *Gorm) CreateParticipant(ctx context.Context, e models.ParticipantEntry) (models.ParticipantEntry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = g.clock.Now().UTC()
	if err := g.db.WithContext(ctx).Create(&e).Error; err != nil {
		return models.ParticipantEntry{}, fmt.Errorf("create participant: %w", duplicate(err))
	}
	return e, nil
}

func (g *Gorm) FindParticipantByOrder(ctx context.Context, orderNumber string) (models.ParticipantEntry, error) {
	var e models.ParticipantEntry
	if err := g.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&e).Error; err != nil {
		return models.ParticipantEntry{}, notFound(err)
	}
	return e, nil
}

func (g *Gorm) CountParticipantsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.ParticipantEntry{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

func (g *Gorm) ListParticipants(ctx context.Context) ([]models.ParticipantEntry, error) {
	var list []models.ParticipantEntry
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return list, nil
}

func (g *Gorm) DeleteAllParticipants(ctx context.Context) (int64, error) {
	res := g.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.ParticipantEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete participants: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (g *Gorm) CreateWinner(ctx context.Context, w models.WinnerRecord) (models.WinnerRecord, error) {
	w.ID = uuid.NewString()
	w.CreatedAt = g.clock.Now().UTC()
	if err := g.db.WithContext(ctx).Create(&w).Error; err != nil {
		return models.WinnerRecord{}, fmt.Errorf("create winner: %w", err)
	}
	return w, nil
}

func (g *Gorm) FindWinnerSince(ctx context.Context, orderNumber string, since time.Time) (models.WinnerRecord, error) {
	var w models.WinnerRecord
	err := g.db.WithContext(ctx).
		Where("order_number = ? AND created_at >= ?", orderNumber, since.UTC()).
		Order("created_at desc").
		First(&w).Error
	if err != nil {
		return models.WinnerRecord{}, notFound(err)
	}
	return w, nil
}

func (g *Gorm) CountWinnersSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.WinnerRecord{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

func (g *Gorm) ListWinners(ctx context.Context) ([]models.WinnerRecord, error) {
	var list []models.WinnerRecord
	if err := g.db.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	return list, nil
}
