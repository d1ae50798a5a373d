package models

import "time"

// AccountingType is the direction of a ledger entry
type AccountingType string

const (
	AccountingTypeIncome  AccountingType = "INCOME"
	AccountingTypeExpense AccountingType = "EXPENSE"
)

// IsValid reports whether t is INCOME or EXPENSE
func (t AccountingType) IsValid() bool {
	return t == AccountingTypeIncome || t == AccountingTypeExpense
}

// AccountingRecord is an immutable ledger entry, optionally tied to a reservation
type AccountingRecord struct {
	ID            int64          `json:"id" db:"id"`
	ReservationID *int64         `json:"reservationId" db:"reservation_id"`
	Amount        float64        `json:"amount" db:"amount"`
	Description   *string        `json:"description" db:"description"`
	Type          AccountingType `json:"type" db:"type"`
	PaymentMethod *string        `json:"paymentMethod" db:"payment_method"`
	PaymentDate   time.Time      `json:"paymentDate" db:"payment_date"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`

	Reservation *ReservationSummary `json:"reservation" db:"-"`
}

// AccountingFilter narrows a ledger listing. PaymentBefore is exclusive so an
// inclusive end date covers the whole day.
type AccountingFilter struct {
	PaymentFrom   *time.Time
	PaymentBefore *time.Time
	Type          *AccountingType
}

// AccountingTotals are computed over exactly the records of one listing
type AccountingTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// AccountingList is the response of GET /accounting
type AccountingList struct {
	Records []AccountingRecord `json:"records"`
	Totals  AccountingTotals   `json:"totals"`
}

// AccountingListQuery holds the raw query parameters of GET /accounting
type AccountingListQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Type      string `form:"type"`
}

// CreateAccountingRecordRequest is the body of POST /accounting
type CreateAccountingRecordRequest struct {
	Amount        FlexFloat     `json:"amount"`
	Type          string        `json:"type"`
	Description   *string       `json:"description,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod *string       `json:"paymentMethod,omitempty" validate:"omitempty,max=50"`
	ReservationID OptionalInt64 `json:"reservationId"`
	PaymentDate   *string       `json:"paymentDate,omitempty"`
}
