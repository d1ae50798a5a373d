package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
)

type auditCall struct {
	action     string
	entityType string
	entityID   int64
	success    bool
	details    map[string]interface{}
}

type fakeAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAuditor) LogLogin(_ context.Context, _ Actor, userID *int64, _ string, success bool, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	action := ActionLoginFailed
	if success {
		action = ActionLoginSuccess
	}
	var id int64
	if userID != nil {
		id = *userID
	}
	f.calls = append(f.calls, auditCall{action: action, entityType: "user", entityID: id, success: success})
}

func (f *fakeAuditor) LogMutation(_ context.Context, _ Actor, action, entityType string, entityID int64, details map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, auditCall{action: action, entityType: entityType, entityID: entityID, success: true, details: details})
}

func (f *fakeAuditor) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.action
	}
	return out
}

// fakeReservationRepo keeps reservations and passengers in memory and applies
// patches the way the SQL repository does
type fakeReservationRepo struct {
	mu           sync.Mutex
	nextID       int64
	nextPassID   int64
	reservations map[int64]*models.Reservation
	passengers   map[int64][]models.Passenger
	clock        time.Time
	createErr    error
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{
		reservations: map[int64]*models.Reservation{},
		passengers:   map[int64][]models.Passenger{},
		clock:        time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeReservationRepo) Create(_ context.Context, res *models.Reservation, names []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}

	f.nextID++
	f.clock = f.clock.Add(time.Minute)
	res.ID = f.nextID
	res.CreatedAt = f.clock
	res.UpdatedAt = f.clock

	res.Passengers = make([]models.Passenger, 0, len(names))
	for _, name := range names {
		f.nextPassID++
		res.Passengers = append(res.Passengers, models.Passenger{ID: f.nextPassID, ReservationID: res.ID, Name: name})
	}

	stored := *res
	stored.Passengers = nil
	f.reservations[res.ID] = &stored
	f.passengers[res.ID] = append([]models.Passenger(nil), res.Passengers...)
	return nil
}

func (f *fakeReservationRepo) view(res *models.Reservation) models.Reservation {
	out := *res
	out.Passengers = append([]models.Passenger{}, f.passengers[res.ID]...)
	return out
}

func (f *fakeReservationRepo) List(_ context.Context) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Reservation, 0, len(f.reservations))
	for _, res := range f.reservations {
		out = append(out, f.view(res))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeReservationRepo) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res, ok := f.reservations[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := f.view(res)
	return &out, nil
}

func (f *fakeReservationRepo) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.reservations[id]
	return ok, nil
}

func (f *fakeReservationRepo) Update(_ context.Context, id int64, patch *models.ReservationPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	res, ok := f.reservations[id]
	if !ok {
		return database.ErrNotFound
	}
	if patch.Status != nil {
		res.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		res.PaymentStatus = *patch.PaymentStatus
	}
	if patch.SetPrice {
		res.Price = patch.Price
	}
	if a := patch.Assignment; a != nil {
		res.DriverID = a.DriverID
		res.IsExternal = a.External
		res.ExternalDriverName = a.ExternalDriverName
		res.ExternalDriverPhone = a.ExternalDriverPhone
	}
	res.UpdatedAt = res.UpdatedAt.Add(time.Second)
	return nil
}

func (f *fakeReservationRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reservations[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.reservations, id)
	delete(f.passengers, id)
	return nil
}

func (f *fakeReservationRepo) passengerRows(id int64) []models.Passenger {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passengers[id]
}

type fakeDriverLookup map[int64]bool

func (f fakeDriverLookup) Exists(_ context.Context, id int64) (bool, error) {
	return f[id], nil
}

type fakeAccountingRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []models.AccountingRecord
}

func (f *fakeAccountingRepo) Create(_ context.Context, rec *models.AccountingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = rec.PaymentDate
	rec.UpdatedAt = rec.PaymentDate
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeAccountingRepo) GetByID(_ context.Context, id int64) (*models.AccountingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeAccountingRepo) List(_ context.Context, filter models.AccountingFilter) ([]models.AccountingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.AccountingRecord{}
	for _, rec := range f.records {
		if filter.PaymentFrom != nil && rec.PaymentDate.Before(*filter.PaymentFrom) {
			continue
		}
		if filter.PaymentBefore != nil && !rec.PaymentDate.Before(*filter.PaymentBefore) {
			continue
		}
		if filter.Type != nil && rec.Type != *filter.Type {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return database.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

// fakeLimiter counts failures per email in memory
type fakeLimiter struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func newFakeLimiter(max int) *fakeLimiter {
	return &fakeLimiter{max: max, failures: map[string]int{}}
}

func (f *fakeLimiter) CheckLoginAllowed(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[email] >= f.max {
		return &RateLimitError{Message: "too many attempts", RetryAfter: time.Now().Add(time.Minute), Type: "email"}
	}
	return nil
}

func (f *fakeLimiter) RecordFailedLogin(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[email]++
	return nil
}

func (f *fakeLimiter) ClearFailedLogins(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, email)
	return nil
}

type fakeAuditReader struct {
	events []models.AuditLog
	limit  int
}

func (f *fakeAuditReader) GetRecentEvents(_ context.Context, _ int64, limit int) ([]models.AuditLog, error) {
	f.limit = limit
	return f.events, nil
}
