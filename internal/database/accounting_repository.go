package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/teraturizm/transfer-admin/internal/models"
)

// accountingRow is a ledger entry joined with the reduced view of its
// reservation and that reservation's driver
type accountingRow struct {
	models.AccountingRecord
	RFrom       sql.NullString `db:"r_from"`
	RTo         sql.NullString `db:"r_to"`
	RDate       sql.NullString `db:"r_date"`
	RTime       sql.NullString `db:"r_time"`
	RPhone      sql.NullString `db:"r_phone"`
	RStatus     sql.NullString `db:"r_status"`
	DID         sql.NullInt64  `db:"d_id"`
	DName       sql.NullString `db:"d_name"`
	DPhone      sql.NullString `db:"d_phone"`
	DIsExternal sql.NullBool   `db:"d_is_external"`
}

func (row accountingRow) toRecord() models.AccountingRecord {
	rec := row.AccountingRecord
	if rec.ReservationID != nil && row.RFrom.Valid {
		rec.Reservation = &models.ReservationSummary{
			ID:     *rec.ReservationID,
			From:   row.RFrom.String,
			To:     row.RTo.String,
			Date:   row.RDate.String,
			Time:   row.RTime.String,
			Phone:  row.RPhone.String,
			Status: models.ReservationStatus(row.RStatus.String),
		}
		if row.DID.Valid {
			rec.Reservation.Driver = &models.DriverSummary{
				ID:         row.DID.Int64,
				Name:       row.DName.String,
				Phone:      row.DPhone.String,
				IsExternal: row.DIsExternal.Bool,
			}
		}
	}
	return rec
}

const accountingSelect = `
	SELECT a.id, a.reservation_id, a.amount, a.description, a.type, a.payment_method,
	       a.payment_date, a.created_at, a.updated_at,
	       r.from_location AS r_from, r.to_location AS r_to, r.travel_date AS r_date,
	       r.travel_time AS r_time, r.phone AS r_phone, r.status AS r_status,
	       d.id AS d_id, d.name AS d_name, d.phone AS d_phone, d.is_external AS d_is_external
	FROM accounting_records a
	LEFT JOIN reservations r ON r.id = a.reservation_id
	LEFT JOIN drivers d ON d.id = r.driver_id
`

// AccountingRepository handles ledger entries
type AccountingRepository struct {
	db DB
}

// NewAccountingRepository creates a new AccountingRepository
func NewAccountingRepository(db DB) *AccountingRepository {
	return &AccountingRepository{db: db}
}

// Create inserts a ledger entry. An unknown reservation returns ErrForeignKey.
func (r *AccountingRepository) Create(ctx context.Context, rec *models.AccountingRecord) error {
	query := `
		INSERT INTO accounting_records (
			reservation_id, amount, description, type, payment_method, payment_date
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		rec.ReservationID,
		rec.Amount,
		rec.Description,
		rec.Type,
		rec.PaymentMethod,
		rec.PaymentDate,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create accounting record: %w", classify(err))
	}

	return nil
}

// GetByID returns one ledger entry with its reservation view
func (r *AccountingRepository) GetByID(ctx context.Context, id int64) (*models.AccountingRecord, error) {
	var row accountingRow
	if err := r.db.GetContext(ctx, &row, accountingSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to fetch accounting record: %w", classify(err))
	}

	rec := row.toRecord()
	return &rec, nil
}

// List returns the entries matching filter, newest payment date first
func (r *AccountingRepository) List(ctx context.Context, filter models.AccountingFilter) ([]models.AccountingRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.PaymentFrom != nil {
		args = append(args, *filter.PaymentFrom)
		conditions = append(conditions, fmt.Sprintf("a.payment_date >= $%d", len(args)))
	}
	if filter.PaymentBefore != nil {
		args = append(args, *filter.PaymentBefore)
		conditions = append(conditions, fmt.Sprintf("a.payment_date < $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", len(args)))
	}

	query := accountingSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.payment_date DESC, a.id DESC"

	var rows []accountingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accounting records: %w", err)
	}

	records := make([]models.AccountingRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}

	return records, nil
}
