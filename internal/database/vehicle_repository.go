package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/teraturizm/transfer-admin/internal/models"
)

const vehicleColumns = `id, plate, brand, model, year, capacity, type, created_at, updated_at`

// VehicleRepository handles vehicle database operations
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create inserts a vehicle. A taken plate returns ErrDuplicate.
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (plate, brand, model, year, capacity, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, v.Plate, v.Brand, v.Model, v.Year, v.Capacity, v.Type).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", classify(err))
	}

	return nil
}

// UpsertByPlate creates the vehicle or refreshes its details
func (r *VehicleRepository) UpsertByPlate(ctx context.Context, v *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (plate, brand, model, year, capacity, type)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (plate) DO UPDATE
		SET brand = EXCLUDED.brand,
		    model = EXCLUDED.model,
		    year = EXCLUDED.year,
		    capacity = EXCLUDED.capacity,
		    type = EXCLUDED.type,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, v.Plate, v.Brand, v.Model, v.Year, v.Capacity, v.Type).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle: %w", classify(err))
	}

	return nil
}

// GetByID retrieves a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	var v models.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch vehicle: %w", classify(err))
	}

	return &v, nil
}

// List returns all vehicles ordered by plate, each with its drivers
func (r *VehicleRepository) List(ctx context.Context) ([]models.VehicleWithDrivers, error) {
	var vehicles []models.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY plate`

	if err := r.db.SelectContext(ctx, &vehicles, query); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	result := make([]models.VehicleWithDrivers, len(vehicles))
	if len(vehicles) == 0 {
		return result, nil
	}

	ids := make([]int64, len(vehicles))
	index := make(map[int64]int, len(vehicles))
	for i, v := range vehicles {
		ids[i] = v.ID
		index[v.ID] = i
		result[i] = models.VehicleWithDrivers{Vehicle: v, Drivers: []models.DriverSummary{}}
	}

	var rows []struct {
		models.DriverSummary
		VehicleID int64 `db:"vehicle_id"`
	}
	driverQuery := `
		SELECT id, name, phone, is_external, vehicle_id
		FROM drivers
		WHERE vehicle_id = ANY($1)
		ORDER BY name, id
	`
	if err := r.db.SelectContext(ctx, &rows, driverQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list vehicle drivers: %w", err)
	}

	for _, row := range rows {
		i, ok := index[row.VehicleID]
		if !ok {
			continue
		}
		result[i].Drivers = append(result[i].Drivers, row.DriverSummary)
	}
	for i := range result {
		result[i].DriverCount = len(result[i].Drivers)
	}

	return result, nil
}
