package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teraturizm/transfer-admin/internal/models"
)

var accountingRowColumns = []string{
	"id", "reservation_id", "amount", "description", "type", "payment_method",
	"payment_date", "created_at", "updated_at",
	"r_from", "r_to", "r_date", "r_time", "r_phone", "r_status",
	"d_id", "d_name", "d_phone", "d_is_external",
}

func TestAccountingRepository_List_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountingRepository(db)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	income := models.AccountingTypeIncome

	mock.ExpectQuery(`FROM accounting_records a (.+) WHERE a.payment_date >= \$1 AND a.payment_date < \$2 AND a.type = \$3 ORDER BY a.payment_date DESC`).
		WithArgs(from, before, income).
		WillReturnRows(sqlmock.NewRows(accountingRowColumns).
			AddRow(2, 7, 120.0, "transfer", "INCOME", "cash", from, from, from,
				"Airport", "Hotel", "2024-06-01", "10:00", "0555", "COMPLETED",
				1, "Ahmet", "0532", false).
			AddRow(1, nil, 80.0, nil, "INCOME", nil, from, from, from,
				nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	records, err := repo.List(context.Background(), models.AccountingFilter{
		PaymentFrom:   &from,
		PaymentBefore: &before,
		Type:          &income,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	linked := records[0]
	require.NotNil(t, linked.Reservation)
	assert.Equal(t, int64(7), linked.Reservation.ID)
	assert.Equal(t, models.ReservationStatusCompleted, linked.Reservation.Status)
	require.NotNil(t, linked.Reservation.Driver)
	assert.Equal(t, "Ahmet", linked.Reservation.Driver.Name)

	assert.Nil(t, records[1].Reservation)
	assert.Equal(t, 80.0, records[1].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountingRepository_List_NoFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountingRepository(db)

	mock.ExpectQuery(`FROM accounting_records a LEFT JOIN reservations r (.+) LEFT JOIN drivers d ON d.id = r.driver_id ORDER BY`).
		WillReturnRows(sqlmock.NewRows(accountingRowColumns))

	records, err := repo.List(context.Background(), models.AccountingFilter{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountingRepository_Create_UnknownReservation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountingRepository(db)
	reservationID := int64(999)
	paid := time.Now()

	mock.ExpectQuery(`INSERT INTO accounting_records`).
		WithArgs(reservationID, 50.0, nil, models.AccountingTypeExpense, nil, paid).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "accounting_records_reservation_id_fkey"})

	err := repo.Create(context.Background(), &models.AccountingRecord{
		ReservationID: &reservationID,
		Amount:        50,
		Type:          models.AccountingTypeExpense,
		PaymentDate:   paid,
	})
	assert.ErrorIs(t, err, ErrForeignKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
