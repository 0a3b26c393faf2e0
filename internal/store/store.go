// Package store persists the three raffle record sets: config, participants
// and winners. Records are addressed by query and by id; orderNumber is the
// only cross-set key and is compared by string equality.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("store: record not found")

// ErrDuplicate is returned when a create violates the order_number
// uniqueness of participant entries.
var ErrDuplicate = errors.New("store: duplicate record")

// ConfigStore holds the singleton raffle config row.
type ConfigStore interface {
	GetConfig(ctx context.Context) (models.RaffleConfig, error)
	SaveConfig(ctx context.Context, cfg models.RaffleConfig) (models.RaffleConfig, error)
}

// ParticipantStore holds participant entries.
type ParticipantStore interface {
	// CreateParticipant assigns the id and server timestamp.
	CreateParticipant(ctx context.Context, e models.ParticipantEntry) (models.ParticipantEntry, error)
	FindParticipantByOrder(ctx context.Context, orderNumber string) (models.ParticipantEntry, error)
	CountParticipantsSince(ctx context.Context, since time.Time) (int64, error)
	// ListParticipants returns every entry, newest first.
	ListParticipants(ctx context.Context) ([]models.ParticipantEntry, error)
	DeleteAllParticipants(ctx context.Context) (int64, error)
}

// WinnerStore holds winner records.
type WinnerStore interface {
	// CreateWinner assigns the id and server timestamp.
	CreateWinner(ctx context.Context, w models.WinnerRecord) (models.WinnerRecord, error)
	// FindWinnerSince returns a record for orderNumber created at or after since.
	FindWinnerSince(ctx context.Context, orderNumber string, since time.Time) (models.WinnerRecord, error)
	CountWinnersSince(ctx context.Context, since time.Time) (int64, error)
	// ListWinners returns every record, newest first.
	ListWinners(ctx context.Context) ([]models.WinnerRecord, error)
}

// Store is the full persistence surface.
type Store interface {
	ConfigStore
	ParticipantStore
	WinnerStore
}
