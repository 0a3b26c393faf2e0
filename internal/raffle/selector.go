package raffle

import (
	"fmt"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/rng"
)

// Selector picks the winner index once per draw.
type Selector struct {
	src rng.Source
}

func NewSelector(src rng.Source) *Selector {
	return &Selector{src: src}
}

// Pick returns a uniformly random index into pool and the entry at it.
func (s *Selector) Pick(pool []models.ParticipantEntry) (int, models.ParticipantEntry, error) {
	if len(pool) == 0 {
		return 0, models.ParticipantEntry{}, ErrEmptyPool
	}
	idx, err := s.src.Intn(len(pool))
	if err != nil {
		return 0, models.ParticipantEntry{}, fmt.Errorf("pick winner: %w", err)
	}
	return idx, pool[idx], nil
}
