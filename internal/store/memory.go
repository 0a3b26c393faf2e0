package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Memory provides an in-memory implementation of Store for tests and local runs.
type Memory struct {
	mu           sync.RWMutex
	clock        clock.Clock
	config       *models.RaffleConfig
	participants map[string]models.ParticipantEntry
	winners      map[string]models.WinnerRecord
	failWith     error
}

// NewMemory creates an empty store stamping records with clk.
func NewMemory(clk clock.Clock) *Memory {
	return &Memory{
		clock:        clk,
		participants: make(map[string]models.ParticipantEntry),
		winners:      make(map[string]models.WinnerRecord),
	}
}

// FailWith makes every subsequent call return err; nil restores normal operation.
func (s *Memory) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Memory) GetConfig(ctx context.Context) (models.RaffleConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.RaffleConfig{}, s.failWith
	}
	if s.config == nil {
		return models.RaffleConfig{}, ErrNotFound
	}
	return *s.config, nil
}

func (s *Memory) SaveConfig(ctx context.Context, cfg models.RaffleConfig) (models.RaffleConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.RaffleConfig{}, s.failWith
	}
	cfg.ID = models.RaffleConfigID
	cfg.UpdatedAt = s.clock.Now().UTC()
	s.config = &cfg
	return cfg, nil
}

func (s *Memory) CreateParticipant(ctx context.Context, e models.ParticipantEntry) (models.ParticipantEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.ParticipantEntry{}, s.failWith
	}
	for _, existing := range s.participants {
		if existing.OrderNumber == e.OrderNumber {
			return models.ParticipantEntry{}, fmt.Errorf("create participant %q: %w", e.OrderNumber, ErrDuplicate)
		}
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.clock.Now().UTC()
	s.participants[e.ID] = e
	return e, nil
}

func (s *Memory) FindParticipantByOrder(ctx context.Context, orderNumber string) (models.ParticipantEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.ParticipantEntry{}, s.failWith
	}
	for _, e := range s.participants {
		if e.OrderNumber == orderNumber {
			return e, nil
		}
	}
	return models.ParticipantEntry{}, ErrNotFound
}

func (s *Memory) CountParticipantsSince(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for _, e := range s.participants {
		if !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Memory) ListParticipants(ctx context.Context) ([]models.ParticipantEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	list := make([]models.ParticipantEntry, 0, len(s.participants))
	for _, e := range s.participants {
		list = append(list, e)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].OrderNumber > list[j].OrderNumber
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Memory) DeleteAllParticipants(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	n := int64(len(s.participants))
	s.participants = make(map[string]models.ParticipantEntry)
	return n, nil
}

func (s *Memory) CreateWinner(ctx context.Context, w models.WinnerRecord) (models.WinnerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.WinnerRecord{}, s.failWith
	}
	w.ID = uuid.NewString()
	w.CreatedAt = s.clock.Now().UTC()
	s.winners[w.ID] = w
	return w, nil
}

func (s *Memory) FindWinnerSince(ctx context.Context, orderNumber string, since time.Time) (models.WinnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return models.WinnerRecord{}, s.failWith
	}
	var found *models.WinnerRecord
	for _, w := range s.winners {
		if w.OrderNumber != orderNumber || w.CreatedAt.Before(since) {
			continue
		}
		if found == nil || w.CreatedAt.After(found.CreatedAt) {
			w := w
			found = &w
		}
	}
	if found == nil {
		return models.WinnerRecord{}, ErrNotFound
	}
	return *found, nil
}

func (s *Memory) CountWinnersSince(ctx context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	var n int64
	for _, w := range s.winners {
		if !w.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Memory) ListWinners(ctx context.Context) ([]models.WinnerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	list := make([]models.WinnerRecord, 0, len(s.winners))
	for _, w := range s.winners {
		list = append(list, w)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}
