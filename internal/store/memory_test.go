package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMemory_ConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(clock.NewManual(epoch))

	_, err := s.GetConfig(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	saved, err := s.SaveConfig(ctx, models.RaffleConfig{Active: true, RuleType: models.RuleOrderValue, Threshold: 100})
	require.NoError(t, err)
	assert.Equal(t, models.RaffleConfigID, saved.ID)
	assert.Equal(t, epoch, saved.UpdatedAt)

	got, err := s.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestMemory_ParticipantsNewestFirst(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(epoch)
	s := NewMemory(clk)

	for _, n := range []string{"A1", "A2", "A3"} {
		_, err := s.CreateParticipant(ctx, models.ParticipantEntry{OrderNumber: n})
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	list, err := s.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "A3", list[0].OrderNumber)
	assert.Equal(t, "A1", list[2].OrderNumber)

	n, err := s.CountParticipantsSince(ctx, epoch.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	found, err := s.FindParticipantByOrder(ctx, "A2")
	require.NoError(t, err)
	assert.NotEmpty(t, found.ID)

	_, err = s.CreateParticipant(ctx, models.ParticipantEntry{OrderNumber: "A2"})
	assert.ErrorIs(t, err, ErrDuplicate)

	deleted, err := s.DeleteAllParticipants(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = s.FindParticipantByOrder(ctx, "A2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FindWinnerSinceRespectsWindow(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(epoch)
	s := NewMemory(clk)

	_, err := s.CreateWinner(ctx, models.WinnerRecord{OrderNumber: "X"})
	require.NoError(t, err)

	_, err = s.FindWinnerSince(ctx, "X", epoch.Add(-time.Hour))
	require.NoError(t, err)

	_, err = s.FindWinnerSince(ctx, "X", epoch.Add(time.Minute))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindWinnerSince(ctx, "Y", epoch.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_FailWith(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(clock.NewManual(epoch))
	boom := errors.New("unavailable")

	s.FailWith(boom)
	_, err := s.ListWinners(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.CountParticipantsSince(ctx, epoch)
	assert.ErrorIs(t, err, boom)

	s.FailWith(nil)
	_, err = s.ListWinners(ctx)
	assert.NoError(t, err)
}
