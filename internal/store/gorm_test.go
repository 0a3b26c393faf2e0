package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ArowuTest/raffle-backend/internal/clock"
	"github.com/ArowuTest/raffle-backend/internal/models"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *Gorm) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return mock, NewGorm(db, clock.NewManual(epoch))
}

func TestGorm_CountParticipantsSince(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "participant_entries" WHERE created_at >=`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountParticipantsSince(context.Background(), epoch.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindParticipantByOrder_NotFound(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "participant_entries" WHERE order_number =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number"}))

	_, err := s.FindParticipantByOrder(context.Background(), "A1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindParticipantByOrder_Found(t *testing.T) {
	mock, s := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "order_number", "client_name", "client_phone", "total_items", "total_value", "created_at"}).
		AddRow("p-1", "A1", "Maria", "11999990000", 6, 120.5, epoch)
	mock.ExpectQuery(`SELECT \* FROM "participant_entries" WHERE order_number =`).
		WillReturnRows(rows)

	e, err := s.FindParticipantByOrder(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", e.ID)
	assert.Equal(t, "Maria", e.ClientName)
	assert.Equal(t, 6, e.TotalItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_DeleteAllParticipants(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM "participant_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.DeleteAllParticipants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_CountWinnersSince_Error(t *testing.T) {
	mock, s := setupMockDB(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "winner_records"`).WillReturnError(boom)

	_, err := s.CountWinnersSince(context.Background(), epoch)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_GetConfig_NotFound(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "raffle_configs" WHERE id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetConfig(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var winnerColumns = []string{"id", "client_name", "client_phone", "order_number", "total_items", "total_value", "created_at"}

func TestGorm_CreateParticipant(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO "participant_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := s.CreateParticipant(context.Background(), models.ParticipantEntry{OrderNumber: "A1", ClientName: "Maria"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, epoch, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_CreateParticipant_UniqueViolation(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO "participant_entries"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.CreateParticipant(context.Background(), models.ParticipantEntry{OrderNumber: "A1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_CreateWinner(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectExec(`INSERT INTO "winner_records"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w, err := s.CreateWinner(context.Background(), models.WinnerRecord{OrderNumber: "W1"})
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, epoch, w.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindWinnerSince_FiltersByOrderAndWindow(t *testing.T) {
	mock, s := setupMockDB(t)
	since := epoch.Add(-24 * time.Hour)

	rows := sqlmock.NewRows(winnerColumns).AddRow("w-1", "Maria", "1", "X", 6, 60.0, epoch.Add(-time.Hour))
	mock.ExpectQuery(`SELECT \* FROM "winner_records" WHERE order_number = \$1 AND created_at >= \$2 ORDER BY created_at desc`).
		WithArgs("X", since, 1).
		WillReturnRows(rows)

	w, err := s.FindWinnerSince(context.Background(), "X", since)
	require.NoError(t, err)
	assert.Equal(t, "w-1", w.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_FindWinnerSince_NotFound(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "winner_records" WHERE order_number = \$1 AND created_at >= \$2`).
		WillReturnRows(sqlmock.NewRows(winnerColumns))

	_, err := s.FindWinnerSince(context.Background(), "X", epoch.Add(-24*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGorm_ListsNewestFirst(t *testing.T) {
	mock, s := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "participant_entries" ORDER BY created_at desc`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "created_at"}).
			AddRow("p-2", "A2", epoch).
			AddRow("p-1", "A1", epoch.Add(-time.Minute)))
	mock.ExpectQuery(`SELECT \* FROM "winner_records" ORDER BY created_at desc`).
		WillReturnRows(sqlmock.NewRows(winnerColumns).AddRow("w-1", "Maria", "1", "X", 6, 60.0, epoch))

	participants, err := s.ListParticipants(context.Background())
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "p-2", participants[0].ID)

	winners, err := s.ListWinners(context.Background())
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
