package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
)

// AccountingService is what the ledger endpoints need
type AccountingService interface {
	List(ctx context.Context, query models.AccountingListQuery) (*models.AccountingList, error)
	Create(ctx context.Context, req *models.CreateAccountingRecordRequest, actor services.Actor) (*models.AccountingRecord, error)
	Report(ctx context.Context, query models.AccountingListQuery) (*services.LedgerReport, error)
}

// AccountingHandler serves the ledger
type AccountingHandler struct {
	accounting AccountingService
	logger     *logrus.Logger
}

// NewAccountingHandler creates a new accounting handler
func NewAccountingHandler(accounting AccountingService, logger *logrus.Logger) *AccountingHandler {
	return &AccountingHandler{accounting: accounting, logger: logger}
}

// List handles GET /api/accounting?startDate=&endDate=&type=
func (h *AccountingHandler) List(c *gin.Context) {
	var query models.AccountingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "invalid query parameters")
		return
	}

	list, err := h.accounting.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, list)
}

// Create handles POST /api/accounting
func (h *AccountingHandler) Create(c *gin.Context) {
	var req models.CreateAccountingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	rec, err := h.accounting.Create(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, rec)
}

// Report handles GET /api/accounting/report.pdf
func (h *AccountingHandler) Report(c *gin.Context) {
	var query models.AccountingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondFailure(c, http.StatusBadRequest, services.CodeValidation, "invalid query parameters")
		return
	}

	report, err := h.accounting.Report(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	c.Data(http.StatusOK, "application/pdf", report.Content)
}
