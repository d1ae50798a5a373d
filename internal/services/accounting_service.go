package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
)

const dateLayout = "2006-01-02"

// AccountingRepository is the persistence the ledger service needs
type AccountingRepository interface {
	Create(ctx context.Context, rec *models.AccountingRecord) error
	GetByID(ctx context.Context, id int64) (*models.AccountingRecord, error)
	List(ctx context.Context, filter models.AccountingFilter) ([]models.AccountingRecord, error)
}

// ReservationLookup checks reservation references
type ReservationLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// AccountingService records income and expense entries and reports on them
type AccountingService struct {
	records      AccountingRepository
	reservations ReservationLookup
	auditor      Auditor
	logger       *logrus.Logger
	location     *time.Location
	now          func() time.Time
}

// NewAccountingService creates a new accounting service. Calendar dates in
// filters and payment dates are interpreted in location.
func NewAccountingService(records AccountingRepository, reservations ReservationLookup, auditor Auditor, logger *logrus.Logger, location *time.Location) *AccountingService {
	if location == nil {
		location = time.Local
	}
	return &AccountingService{
		records:      records,
		reservations: reservations,
		auditor:      auditor,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// List returns the ledger entries matching query with totals over exactly
// those entries
func (s *AccountingService) List(ctx context.Context, query models.AccountingListQuery) (*models.AccountingList, error) {
	filter, err := s.parseFilter(query)
	if err != nil {
		return nil, err
	}

	records, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounting records: %w", err)
	}

	return &models.AccountingList{
		Records: records,
		Totals:  computeTotals(records),
	}, nil
}

func (s *AccountingService) parseFilter(query models.AccountingListQuery) (models.AccountingFilter, error) {
	var filter models.AccountingFilter

	if raw := strings.TrimSpace(query.StartDate); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, s.location)
		if err != nil {
			return filter, &ValidationError{Message: "invalid startDate, expected YYYY-MM-DD"}
		}
		filter.PaymentFrom = &start
	}

	if raw := strings.TrimSpace(query.EndDate); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, s.location)
		if err != nil {
			return filter, &ValidationError{Message: "invalid endDate, expected YYYY-MM-DD"}
		}
		before := end.AddDate(0, 0, 1)
		filter.PaymentBefore = &before
	}

	if raw := strings.TrimSpace(query.Type); raw != "" {
		t := models.AccountingType(strings.ToUpper(raw))
		if !t.IsValid() {
			return filter, &ValidationError{Message: "invalid type, expected INCOME or EXPENSE"}
		}
		filter.Type = &t
	}

	return filter, nil
}

// computeTotals sums in cents so totals do not drift
func computeTotals(records []models.AccountingRecord) models.AccountingTotals {
	var income, expense int64
	for _, rec := range records {
		cents := int64(math.Round(rec.Amount * 100))
		switch rec.Type {
		case models.AccountingTypeIncome:
			income += cents
		case models.AccountingTypeExpense:
			expense += cents
		}
	}

	return models.AccountingTotals{
		Income:  float64(income) / 100,
		Expense: float64(expense) / 100,
		Net:     float64(income-expense) / 100,
	}
}

// Create validates and stores a ledger entry
func (s *AccountingService) Create(ctx context.Context, req *models.CreateAccountingRecordRequest, actor Actor) (*models.AccountingRecord, error) {
	if !req.Amount.Valid || req.Amount.Value <= 0 {
		return nil, &ValidationError{Message: "amount must be a number greater than 0"}
	}

	recordType := models.AccountingType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if recordType == "" {
		return nil, &ValidationError{Message: "type is required"}
	}
	if !recordType.IsValid() {
		return nil, &ValidationError{Message: "invalid type, expected INCOME or EXPENSE"}
	}

	req.Description = trimOptional(req.Description)
	req.PaymentMethod = trimOptional(req.PaymentMethod)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	paymentDate, err := s.parsePaymentDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	reservationID := req.ReservationID.Ptr()
	if reservationID != nil {
		if *reservationID <= 0 {
			return nil, &ValidationError{Message: "invalid reservationId"}
		}
		exists, err := s.reservations.Exists(ctx, *reservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check reservation: %w", err)
		}
		if !exists {
			return nil, &NotFoundError{Resource: "reservation"}
		}
	}

	rec := &models.AccountingRecord{
		ReservationID: reservationID,
		Amount:        math.Round(req.Amount.Value*100) / 100,
		Description:   req.Description,
		Type:          recordType,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   paymentDate,
	}

	if err := s.records.Create(ctx, rec); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, &NotFoundError{Resource: "reservation"}
		}
		return nil, fmt.Errorf("failed to create accounting record: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionAccountingCreate, "accounting_record", rec.ID, map[string]interface{}{
		"amount":        rec.Amount,
		"type":          rec.Type,
		"reservationId": rec.ReservationID,
	})

	created, err := s.records.GetByID(ctx, rec.ID)
	if err != nil {
		s.logger.WithError(err).WithField("record_id", rec.ID).Warn("Failed to reload accounting record")
		return rec, nil
	}
	return created, nil
}

func (s *AccountingService) parsePaymentDate(raw *string) (time.Time, error) {
	value := trimOptional(raw)
	if value == nil {
		return s.now(), nil
	}

	if t, err := time.ParseInLocation(dateLayout, *value, s.location); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, *value); err == nil {
		return t, nil
	}

	return time.Time{}, &ValidationError{Message: "invalid paymentDate, expected YYYY-MM-DD or RFC3339"}
}
