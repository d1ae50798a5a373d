package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teraturizm/transfer-admin/internal/models"
)

var reservationRowColumns = []string{
	"id", "from_location", "to_location", "travel_date", "travel_time", "phone",
	"flight_code", "passenger_count", "luggage_count", "status", "price",
	"payment_status", "driver_id", "is_external", "external_driver_name",
	"external_driver_phone", "created_at", "updated_at",
	"d_name", "d_phone", "d_is_external", "v_plate", "v_brand", "v_model",
}

func TestReservationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Inserts reservation and passengers in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO reservations`).
			WithArgs("Airport", "Hotel", "2024-06-01", "10:30", "05321234567", nil, 2, 3,
				models.ReservationStatusPending, models.PaymentStatusUnpaid).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))
		mock.ExpectQuery(`INSERT INTO passengers`).
			WithArgs(11, "Ayse").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
		mock.ExpectQuery(`INSERT INTO passengers`).
			WithArgs(11, "Bob").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(102))
		mock.ExpectCommit()

		res := &models.Reservation{
			From: "Airport", To: "Hotel", Date: "2024-06-01", Time: "10:30", Phone: "05321234567",
			PassengerCount: 2, LuggageCount: 3,
			Status: models.ReservationStatusPending, PaymentStatus: models.PaymentStatusUnpaid,
		}
		require.NoError(t, repo.Create(ctx, res, []string{"Ayse", "Bob"}))

		assert.Equal(t, int64(11), res.ID)
		require.Len(t, res.Passengers, 2)
		assert.Equal(t, "Ayse", res.Passengers[0].Name)
		assert.Equal(t, int64(102), res.Passengers[1].ID)
		assert.Equal(t, int64(11), res.Passengers[1].ReservationID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Passenger failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO reservations`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(12, now, now))
		mock.ExpectQuery(`INSERT INTO passengers`).WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		err := repo.Create(ctx, &models.Reservation{}, []string{"Ayse"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert passenger")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReservationRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	now := time.Now()
	price := 150.5

	mock.ExpectQuery(`SELECT (.+) FROM reservations r LEFT JOIN drivers d (.+) ORDER BY r.created_at DESC`).
		WillReturnRows(sqlmock.NewRows(reservationRowColumns).
			AddRow(2, "A", "B", "2024-06-02", "09:00", "555", "TK123", 1, 0, "CONFIRMED", price,
				"PAID", 5, false, nil, nil, now, now,
				"Ahmet", "0532", false, "34ABC123", "Mercedes", "Vito").
			AddRow(1, "C", "D", "2024-06-01", "08:00", "556", nil, 2, 1, "PENDING", nil,
				"UNPAID", nil, true, "Ali", "0534", now, now,
				nil, nil, nil, nil, nil, nil))

	mock.ExpectQuery(`SELECT id, reservation_id, name FROM passengers WHERE reservation_id = ANY`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "name"}).
			AddRow(1, 1, "First").
			AddRow(2, 1, "Second"))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	first := list[0]
	assert.Equal(t, int64(2), first.ID)
	require.NotNil(t, first.Price)
	assert.Equal(t, price, *first.Price)
	require.NotNil(t, first.Driver)
	assert.Equal(t, "Ahmet", first.Driver.Name)
	require.NotNil(t, first.Driver.Vehicle)
	assert.Equal(t, "34ABC123", first.Driver.Vehicle.Plate)
	assert.Empty(t, first.Passengers)
	assert.NotNil(t, first.Passengers)

	second := list[1]
	assert.Nil(t, second.Driver)
	assert.True(t, second.IsExternal)
	require.NotNil(t, second.ExternalDriverName)
	assert.Equal(t, "Ali", *second.ExternalDriverName)
	require.Len(t, second.Passengers, 2)
	assert.Equal(t, "First", second.Passengers[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM reservations r (.+) WHERE r.id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	res, err := repo.GetByID(context.Background(), 99)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Status and external assignment in one statement", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		status := models.ReservationStatusConfirmed
		name := "Ali Demir"

		mock.ExpectQuery(`UPDATE reservations SET status = \$1, driver_id = \$2, is_external = \$3, external_driver_name = \$4, external_driver_phone = \$5, updated_at = NOW\(\) WHERE id = \$6 RETURNING id`).
			WithArgs(status, nil, true, name, nil, 4).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

		err := repo.Update(ctx, 4, &models.ReservationPatch{
			Status: &status,
			Assignment: &models.DriverAssignment{
				External:           true,
				ExternalDriverName: &name,
			},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Price cleared with null", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)

		mock.ExpectQuery(`UPDATE reservations SET price = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(nil, 4).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

		require.NoError(t, repo.Update(ctx, 4, &models.ReservationPatch{SetPrice: true}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing reservation", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)

		mock.ExpectQuery(`UPDATE reservations`).WillReturnError(sql.ErrNoRows)

		status := models.ReservationStatusCancelled
		err := repo.Update(ctx, 404, &models.ReservationPatch{Status: &status})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Unknown driver", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)
		driverID := int64(77)

		mock.ExpectQuery(`UPDATE reservations`).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "reservations_driver_id_fkey"})

		err := repo.Update(ctx, 4, &models.ReservationPatch{
			Assignment: &models.DriverAssignment{DriverID: &driverID},
		})
		assert.ErrorIs(t, err, ErrForeignKey)
	})
}

func TestReservationRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)

		mock.ExpectExec(`DELETE FROM reservations WHERE id = \$1`).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing reservation", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewReservationRepository(db)

		mock.ExpectExec(`DELETE FROM reservations`).
			WithArgs(3).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 3), ErrNotFound)
	})
}
