package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/teraturizm/transfer-admin/internal/models"
)

// driverRow is a driver joined with its optional vehicle
type driverRow struct {
	models.Driver
	VPlate     sql.NullString `db:"v_plate"`
	VBrand     sql.NullString `db:"v_brand"`
	VModel     sql.NullString `db:"v_model"`
	VYear      sql.NullInt64  `db:"v_year"`
	VCapacity  sql.NullInt64  `db:"v_capacity"`
	VType      sql.NullString `db:"v_type"`
	VCreatedAt sql.NullTime   `db:"v_created_at"`
	VUpdatedAt sql.NullTime   `db:"v_updated_at"`
}

func (row driverRow) toDriver() models.Driver {
	d := row.Driver
	if d.VehicleID != nil && row.VPlate.Valid {
		d.Vehicle = &models.Vehicle{
			ID:        *d.VehicleID,
			Plate:     row.VPlate.String,
			Brand:     row.VBrand.String,
			Model:     row.VModel.String,
			Year:      int(row.VYear.Int64),
			Capacity:  int(row.VCapacity.Int64),
			Type:      row.VType.String,
			CreatedAt: row.VCreatedAt.Time,
			UpdatedAt: row.VUpdatedAt.Time,
		}
	}
	return d
}

const driverSelect = `
	SELECT d.id, d.name, d.phone, d.email, d.license_no, d.is_external, d.vehicle_id,
	       d.created_at, d.updated_at,
	       v.plate AS v_plate, v.brand AS v_brand, v.model AS v_model, v.year AS v_year,
	       v.capacity AS v_capacity, v.type AS v_type,
	       v.created_at AS v_created_at, v.updated_at AS v_updated_at
	FROM drivers d
	LEFT JOIN vehicles v ON v.id = d.vehicle_id
`

// DriverRepository handles driver database operations
type DriverRepository struct {
	db DB
}

// NewDriverRepository creates a new DriverRepository
func NewDriverRepository(db DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Create inserts a driver. An unknown vehicle_id returns ErrForeignKey.
func (r *DriverRepository) Create(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (name, phone, email, license_no, is_external, vehicle_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, d.Name, d.Phone, d.Email, d.LicenseNo, d.IsExternal, d.VehicleID).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", classify(err))
	}

	return nil
}

// GetByID retrieves a driver with its vehicle
func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	var row driverRow
	if err := r.db.GetContext(ctx, &row, driverSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to fetch driver: %w", classify(err))
	}

	d := row.toDriver()
	return &d, nil
}

// GetByPhone retrieves the first driver registered with phone
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	var row driverRow
	if err := r.db.GetContext(ctx, &row, driverSelect+` WHERE d.phone = $1 ORDER BY d.id LIMIT 1`, phone); err != nil {
		return nil, fmt.Errorf("failed to fetch driver: %w", classify(err))
	}

	d := row.toDriver()
	return &d, nil
}

// Exists reports whether a driver with id exists
func (r *DriverRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM drivers WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check driver: %w", err)
	}
	return exists, nil
}

// List returns all drivers ordered by name, each with its vehicle and
// assigned reservations ordered by travel date and time.
func (r *DriverRepository) List(ctx context.Context) ([]models.DriverWithReservations, error) {
	var rows []driverRow
	if err := r.db.SelectContext(ctx, &rows, driverSelect+` ORDER BY d.name, d.id`); err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}

	result := make([]models.DriverWithReservations, len(rows))
	if len(rows) == 0 {
		return result, nil
	}

	ids := make([]int64, len(rows))
	index := make(map[int64]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
		result[i] = models.DriverWithReservations{
			Driver:       row.toDriver(),
			Reservations: []models.DriverReservation{},
		}
	}

	var reservations []models.DriverReservation
	query := `
		SELECT id, driver_id, travel_date, travel_time, from_location, to_location, status
		FROM reservations
		WHERE driver_id = ANY($1)
		ORDER BY travel_date, travel_time, id
	`
	if err := r.db.SelectContext(ctx, &reservations, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list driver reservations: %w", err)
	}

	for _, res := range reservations {
		if i, ok := index[res.DriverID]; ok {
			result[i].Reservations = append(result[i].Reservations, res)
		}
	}

	return result, nil
}
