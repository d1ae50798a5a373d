package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/teraturizm/transfer-admin/internal/models"
)

// reservationRow is a reservation joined with its assigned company driver
// and that driver's vehicle
type reservationRow struct {
	models.Reservation
	DName       sql.NullString `db:"d_name"`
	DPhone      sql.NullString `db:"d_phone"`
	DIsExternal sql.NullBool   `db:"d_is_external"`
	VPlate      sql.NullString `db:"v_plate"`
	VBrand      sql.NullString `db:"v_brand"`
	VModel      sql.NullString `db:"v_model"`
}

func (row reservationRow) toReservation() models.Reservation {
	res := row.Reservation
	res.Passengers = []models.Passenger{}
	if res.DriverID != nil && row.DName.Valid {
		res.Driver = &models.DriverSummary{
			ID:         *res.DriverID,
			Name:       row.DName.String,
			Phone:      row.DPhone.String,
			IsExternal: row.DIsExternal.Bool,
		}
		if row.VPlate.Valid {
			res.Driver.Vehicle = &models.VehicleSummary{
				Plate: row.VPlate.String,
				Brand: row.VBrand.String,
				Model: row.VModel.String,
			}
		}
	}
	return res
}

const reservationSelect = `
	SELECT r.id, r.from_location, r.to_location, r.travel_date, r.travel_time, r.phone,
	       r.flight_code, r.passenger_count, r.luggage_count, r.status, r.price,
	       r.payment_status, r.driver_id, r.is_external, r.external_driver_name,
	       r.external_driver_phone, r.created_at, r.updated_at,
	       d.name AS d_name, d.phone AS d_phone, d.is_external AS d_is_external,
	       v.plate AS v_plate, v.brand AS v_brand, v.model AS v_model
	FROM reservations r
	LEFT JOIN drivers d ON d.id = r.driver_id
	LEFT JOIN vehicles v ON v.id = d.vehicle_id
`

// ReservationRepository handles reservations and their passengers
type ReservationRepository struct {
	db DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts the reservation and one passenger row per name, in order,
// inside a single transaction.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation, names []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertReservation := `
		INSERT INTO reservations (
			from_location, to_location, travel_date, travel_time, phone, flight_code,
			passenger_count, luggage_count, status, payment_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, insertReservation,
		res.From,
		res.To,
		res.Date,
		res.Time,
		res.Phone,
		res.FlightCode,
		res.PassengerCount,
		res.LuggageCount,
		res.Status,
		res.PaymentStatus,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", classify(err))
	}

	res.Passengers = make([]models.Passenger, 0, len(names))
	for _, name := range names {
		p := models.Passenger{ReservationID: res.ID, Name: name}
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO passengers (reservation_id, name) VALUES ($1, $2) RETURNING id`,
			res.ID, name,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to insert passenger: %w", classify(err))
		}
		res.Passengers = append(res.Passengers, p)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	return nil
}

// List returns every reservation newest first with passengers and driver
func (r *ReservationRepository) List(ctx context.Context) ([]models.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, reservationSelect+` ORDER BY r.created_at DESC, r.id DESC`); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	result := make([]models.Reservation, len(rows))
	for i, row := range rows {
		result[i] = row.toReservation()
	}

	if err := r.attachPassengers(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID returns one reservation in the same shape as List
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, reservationSelect+` WHERE r.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to fetch reservation: %w", classify(err))
	}

	result := []models.Reservation{row.toReservation()}
	if err := r.attachPassengers(ctx, result); err != nil {
		return nil, err
	}

	return &result[0], nil
}

// Exists reports whether a reservation with id exists
func (r *ReservationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check reservation: %w", err)
	}
	return exists, nil
}

// Update applies patch in one UPDATE statement. A missing reservation returns
// ErrNotFound and an unknown driver returns ErrForeignKey.
func (r *ReservationRepository) Update(ctx context.Context, id int64, patch *models.ReservationPatch) error {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		add("payment_status", *patch.PaymentStatus)
	}
	if patch.SetPrice {
		add("price", patch.Price)
	}
	if a := patch.Assignment; a != nil {
		add("driver_id", a.DriverID)
		add("is_external", a.External)
		add("external_driver_name", a.ExternalDriverName)
		add("external_driver_phone", a.ExternalDriverPhone)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE reservations SET %s WHERE id = $%d RETURNING id`,
		strings.Join(sets, ", "), len(args))

	var updated int64
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&updated); err != nil {
		return fmt.Errorf("failed to update reservation: %w", classify(err))
	}

	return nil
}

// Delete removes a reservation. Passengers cascade, ledger links are nulled.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete reservation: %w", ErrNotFound)
	}

	return nil
}

func (r *ReservationRepository) attachPassengers(ctx context.Context, reservations []models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]int64, len(reservations))
	index := make(map[int64]int, len(reservations))
	for i, res := range reservations {
		ids[i] = res.ID
		index[res.ID] = i
	}

	var passengers []models.Passenger
	query := `SELECT id, reservation_id, name FROM passengers WHERE reservation_id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &passengers, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load passengers: %w", err)
	}

	for _, p := range passengers {
		if i, ok := index[p.ReservationID]; ok {
			reservations[i].Passengers = append(reservations[i].Passengers, p)
		}
	}

	return nil
}
