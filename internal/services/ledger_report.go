package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/teraturizm/transfer-admin/internal/models"
)

// LedgerReport is a rendered PDF of a ledger listing
type LedgerReport struct {
	Filename string
	Content  []byte
}

// Report renders the entries matching query as an A4 PDF table with totals
func (s *AccountingService) Report(ctx context.Context, query models.AccountingListQuery) (*LedgerReport, error) {
	list, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}

	content, err := renderLedgerPDF(list, query, s.now().In(s.location).Format("2006-01-02 15:04"))
	if err != nil {
		return nil, fmt.Errorf("failed to render ledger report: %w", err)
	}

	return &LedgerReport{
		Filename: reportFilename(query),
		Content:  content,
	}, nil
}

func reportFilename(query models.AccountingListQuery) string {
	parts := []string{"ledger"}
	for _, p := range []string{query.StartDate, query.EndDate, strings.ToLower(query.Type)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_") + ".pdf"
}

var ledgerColumns = []struct {
	title string
	width float64
	align string
}{
	{"#", 12, "L"},
	{"Date", 26, "L"},
	{"Type", 22, "L"},
	{"Description", 62, "L"},
	{"Method", 24, "L"},
	{"Amount", 30, "R"},
}

func renderLedgerPDF(list *models.AccountingList, query models.AccountingListQuery, generatedAt string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Ledger report", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Ledger report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr("Generated: "+generatedAt))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Filter: "+describeFilter(query)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range ledgerColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, rec := range list.Records {
		description := ""
		if rec.Description != nil {
			description = *rec.Description
		}
		if rec.Reservation != nil {
			description = strings.TrimSpace(fmt.Sprintf("%s (R%d %s-%s)", description,
				rec.Reservation.ID, rec.Reservation.From, rec.Reservation.To))
		}
		method := ""
		if rec.PaymentMethod != nil {
			method = *rec.PaymentMethod
		}

		cells := []string{
			fmt.Sprintf("%d", rec.ID),
			rec.PaymentDate.Format("2006-01-02"),
			string(rec.Type),
			truncate(description, 40),
			truncate(method, 14),
			fmt.Sprintf("%.2f", rec.Amount),
		}
		for i, col := range ledgerColumns {
			pdf.CellFormat(col.width, 6, tr(cells[i]), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(list.Records) == 0 {
		pdf.CellFormat(176, 6, "No entries", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 11)
	for _, line := range []struct {
		label string
		value float64
	}{
		{"Income", list.Totals.Income},
		{"Expense", list.Totals.Expense},
		{"Net", list.Totals.Net},
	} {
		pdf.CellFormat(146, 7, line.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", line.value), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describeFilter(query models.AccountingListQuery) string {
	var parts []string
	if v := strings.TrimSpace(query.StartDate); v != "" {
		parts = append(parts, "from "+v)
	}
	if v := strings.TrimSpace(query.EndDate); v != "" {
		parts = append(parts, "to "+v)
	}
	if v := strings.TrimSpace(query.Type); v != "" {
		parts = append(parts, strings.ToUpper(v)+" only")
	}
	if len(parts) == 0 {
		return "all entries"
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
