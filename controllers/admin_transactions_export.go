package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"

	"github.com/quickbite/payment-service/models"
	"github.com/quickbite/payment-service/store"
	"github.com/quickbite/payment-service/utils"
)

type transactionSummary struct {
	Total        int
	Paid         int
	Pending      int
	Failed       int
	PaidAmount   int64
	PaidCurrency string
}

func summarize(records []models.PaymentRecord) transactionSummary {
	var summary transactionSummary
	for _, record := range records {
		summary.Total++
		switch record.Status {
		case models.PaymentStatusPaid:
			summary.Paid++
			summary.PaidAmount += record.Amount
			summary.PaidCurrency = record.Currency
		case models.PaymentStatusPending:
			summary.Pending++
		case models.PaymentStatusFailed:
			summary.Failed++
		}
	}
	return summary
}

// majorUnits renders a smallest-unit amount as a major-unit string.
func majorUnits(amount int64) string {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// periodRange resolves the period query parameter into a date range.
func periodRange(c *gin.Context) (period string, startDate, endDate time.Time, ok bool) {
	period = c.DefaultQuery("period", "day")
	now := time.Now()

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return period, startDate, endDate, false
	}
	return period, startDate, endDate, true
}

// Admin: Download transaction report as Excel
func (h *Handler) DownloadTransactionsExcel(c *gin.Context) {
	utils.LogInfo("DownloadTransactionsExcel called")

	period, startDate, endDate, ok := periodRange(c)
	if !ok {
		return
	}
	utils.LogDebug("Generating Excel report for period: %s", period)

	records, _, err := h.Store.List(c.Request.Context(), store.ListFilter{From: startDate, To: endDate})
	if err != nil {
		utils.LogError("Failed to fetch transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", nil)
		return
	}
	utils.LogDebug("Retrieved %d transactions for Excel report", len(records))
	summary := summarize(records)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("QUICKBITE - Transaction Report")
	periodRow := sheet.AddRow()
	periodRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Reference", "Order ID", "User ID", "Date", "Amount", "Currency", "Status", "Gateway Order"}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.SetString(header)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, record := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(record.ReferenceID)
		row.AddCell().SetString(record.OrderID)
		row.AddCell().SetInt(int(record.UserID))
		row.AddCell().SetString(record.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(majorUnits(record.Amount))
		row.AddCell().SetString(record.Currency)
		row.AddCell().SetString(record.Status)
		row.AddCell().SetString(record.GatewayOrderID)
	}

	sheet.AddRow() // spacing

	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Summary")
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	summaryRow.Cells[0].SetStyle(style)

	summaryData := [][]string{
		{"Total Transactions", fmt.Sprintf("%d", summary.Total)},
		{"Paid", fmt.Sprintf("%d", summary.Paid)},
		{"Pending", fmt.Sprintf("%d", summary.Pending)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Collected Amount", fmt.Sprintf("%s %s", summary.PaidCurrency, majorUnits(summary.PaidAmount))},
	}
	for _, data := range summaryData {
		row := sheet.AddRow()
		row.AddCell().SetString(data[0])
		row.AddCell().SetString(data[1])
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.xlsx", period))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", nil)
		return
	}
	utils.LogInfo("Successfully generated Excel report for period %s", period)
}

// Admin: Download transaction report as PDF
func (h *Handler) DownloadTransactionsPDF(c *gin.Context) {
	utils.LogInfo("DownloadTransactionsPDF called")

	period, startDate, endDate, ok := periodRange(c)
	if !ok {
		return
	}
	utils.LogDebug("Generating PDF report for period: %s", period)

	records, _, err := h.Store.List(c.Request.Context(), store.ListFilter{From: startDate, To: endDate})
	if err != nil {
		utils.LogError("Failed to fetch transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", nil)
		return
	}
	utils.LogDebug("Retrieved %d transactions for PDF report", len(records))
	summary := summarize(records)

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "QUICKBITE - Transaction Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Period: "+strings.ToUpper(period)+" | "+startDate.Format("2006-01-02")+" to "+endDate.Format("2006-01-02"))
	pdf.Ln(10)

	headers := []string{"Reference", "Order ID", "User ID", "Date", "Amount", "Currency", "Status", "Gateway Order"}
	colWidths := []float64{55, 30, 20, 32, 25, 22, 22, 45}
	pdf.SetFont("Arial", "B", 11)
	for i, header := range headers {
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(colWidths[i], 9, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	fill := false
	for _, record := range records {
		pdf.SetFillColor(245, 245, 245)
		if fill {
			pdf.SetFillColor(230, 240, 255)
		}
		fill = !fill
		pdf.CellFormat(colWidths[0], 8, record.ReferenceID, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(colWidths[1], 8, record.OrderID, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%d", record.UserID), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[3], 8, record.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[4], 8, majorUnits(record.Amount), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(colWidths[5], 8, record.Currency, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[6], 8, record.Status, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(colWidths[7], 8, record.GatewayOrderID, "1", 0, "L", fill, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(70, 10, "Summary", "1", 0, "C", true, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(50, 8, "Total Transactions", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.Total), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(50, 8, "Paid", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.Paid), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(50, 8, "Pending", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.Pending), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(50, 8, "Failed", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", summary.Failed), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.CellFormat(50, 8, "Collected Amount", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%s %s", summary.PaidCurrency, majorUnits(summary.PaidAmount)), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions_%s.pdf", period))
	if err := pdf.Output(c.Writer); err != nil {
		utils.LogError("Failed to write PDF file: %v", err)
		utils.InternalServerError(c, "Failed to write PDF file", nil)
		return
	}
	utils.LogInfo("Successfully generated PDF report for period %s", period)
}
