package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
)

type fakeVehicleRepo struct {
	vehicles []models.Vehicle
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *models.Vehicle) error {
	for _, existing := range f.vehicles {
		if existing.Plate == v.Plate {
			return database.ErrDuplicate
		}
	}
	v.ID = int64(len(f.vehicles) + 1)
	f.vehicles = append(f.vehicles, *v)
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id int64) (*models.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ID == id {
			out := v
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeVehicleRepo) List(_ context.Context) ([]models.VehicleWithDrivers, error) {
	out := make([]models.VehicleWithDrivers, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, models.VehicleWithDrivers{Vehicle: v, Drivers: []models.DriverSummary{}})
	}
	return out, nil
}

type fakeDriverRepo struct {
	vehicles *fakeVehicleRepo
	drivers  []models.Driver
}

func (f *fakeDriverRepo) Create(_ context.Context, d *models.Driver) error {
	d.ID = int64(len(f.drivers) + 1)
	f.drivers = append(f.drivers, *d)
	return nil
}

func (f *fakeDriverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	for _, d := range f.drivers {
		if d.ID != id {
			continue
		}
		out := d
		if out.VehicleID != nil {
			out.Vehicle, _ = f.vehicles.GetByID(ctx, *out.VehicleID)
		}
		return &out, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeDriverRepo) List(_ context.Context) ([]models.DriverWithReservations, error) {
	out := make([]models.DriverWithReservations, 0, len(f.drivers))
	for _, d := range f.drivers {
		out = append(out, models.DriverWithReservations{Driver: d, Reservations: []models.DriverReservation{}})
	}
	return out, nil
}

func setupFleetTest() (*FleetService, *fakeDriverRepo, *fakeVehicleRepo, *fakeAuditor) {
	vehicles := &fakeVehicleRepo{}
	drivers := &fakeDriverRepo{vehicles: vehicles}
	auditor := &fakeAuditor{}

	svc := NewFleetService(drivers, vehicles, auditor, quietLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, drivers, vehicles, auditor
}

func TestFleetService_CreateVehicle(t *testing.T) {
	ctx := context.Background()
	svc, _, _, auditor := setupFleetTest()

	vehicle, err := svc.CreateVehicle(ctx, &models.CreateVehicleRequest{Plate: " 34 abc 123 ", Brand: "Mercedes", Model: "Vito"}, Actor{})
	require.NoError(t, err)

	assert.Equal(t, "34ABC123", vehicle.Plate)
	assert.Equal(t, 2024, vehicle.Year)
	assert.Equal(t, models.DefaultVehicleCapacity, vehicle.Capacity)
	assert.Equal(t, models.DefaultVehicleType, vehicle.Type)
	assert.Equal(t, []string{ActionVehicleCreate}, auditor.actions())

	_, err = svc.CreateVehicle(ctx, &models.CreateVehicleRequest{Plate: "34ABC123", Brand: "Ford", Model: "Transit"}, Actor{})
	assert.Equal(t, CodeConflict, ErrorCode(err))
	assert.Contains(t, err.Error(), "34ABC123")

	year, capacity, kind := 2020, 12, "vip"
	custom, err := svc.CreateVehicle(ctx, &models.CreateVehicleRequest{
		Plate: "06XYZ9", Brand: "Ford", Model: "Transit", Year: &year, Capacity: &capacity, Type: &kind,
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, 2020, custom.Year)
	assert.Equal(t, 12, custom.Capacity)
	assert.Equal(t, "VIP", custom.Type)

	_, err = svc.CreateVehicle(ctx, &models.CreateVehicleRequest{Plate: "  ", Brand: "Ford", Model: "Transit"}, Actor{})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	list, err := svc.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestFleetService_CreateDriver(t *testing.T) {
	ctx := context.Background()

	decode := func(t *testing.T, body string) *models.CreateDriverRequest {
		var req models.CreateDriverRequest
		require.NoError(t, json.NewDecoder(strings.NewReader(body)).Decode(&req))
		return &req
	}

	t.Run("company driver with vehicle", func(t *testing.T) {
		svc, _, _, auditor := setupFleetTest()
		vehicle, err := svc.CreateVehicle(ctx, &models.CreateVehicleRequest{Plate: "34ABC123", Brand: "Mercedes", Model: "Vito"}, Actor{})
		require.NoError(t, err)

		driver, err := svc.CreateDriver(ctx, decode(t, `{"name":" Ahmet Yılmaz ","phone":"+905551112233","email":" ","vehicleId":`+jsonInt(vehicle.ID)+`}`), Actor{})
		require.NoError(t, err)

		assert.Equal(t, "Ahmet Yılmaz", driver.Name)
		assert.Nil(t, driver.Email)
		require.NotNil(t, driver.VehicleID)
		require.NotNil(t, driver.Vehicle)
		assert.Equal(t, "34ABC123", driver.Vehicle.Plate)
		assert.Contains(t, auditor.actions(), ActionDriverCreate)
	})

	t.Run("external driver drops vehicle", func(t *testing.T) {
		svc, _, _, _ := setupFleetTest()
		_, err := svc.CreateVehicle(ctx, &models.CreateVehicleRequest{Plate: "34ABC123", Brand: "Mercedes", Model: "Vito"}, Actor{})
		require.NoError(t, err)

		driver, err := svc.CreateDriver(ctx, decode(t, `{"name":"Hasan","phone":"5551112233","isExternal":true,"vehicleId":1}`), Actor{})
		require.NoError(t, err)
		assert.True(t, driver.IsExternal)
		assert.Nil(t, driver.VehicleID)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{"missing name", `{"phone":"5551112233"}`, CodeValidation},
			{"missing phone", `{"name":"Ali"}`, CodeValidation},
			{"malformed phone", `{"name":"Ali","phone":"call me"}`, CodeValidation},
			{"bad email", `{"name":"Ali","phone":"5551112233","email":"nope"}`, CodeValidation},
			{"unknown vehicle", `{"name":"Ali","phone":"5551112233","vehicleId":9}`, CodeNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, drivers, _, _ := setupFleetTest()

				_, err := svc.CreateDriver(ctx, decode(t, tt.body), Actor{})
				assert.Equal(t, tt.wantCode, ErrorCode(err))
				assert.Empty(t, drivers.drivers)
			})
		}
	})
}
