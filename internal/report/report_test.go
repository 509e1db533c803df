package report

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(d, h int) time.Time {
	return time.Date(2026, time.October, d, h, 0, 0, 0, time.UTC)
}

func tx(at time.Time, method models.PaymentMethod, items ...models.OrderItem) models.Transaction {
	t := models.Transaction{CreatedAt: at, PaymentMethod: method, OrderItems: items}
	for _, it := range items {
		t.TotalAmount += it.LineTotal
		t.Quantity += it.Qty
	}
	return t
}

var (
	latte    = models.OrderItem{ProductID: 1, Title: "Latte", Price: 120, Qty: 2, LineTotal: 240}
	espresso = models.OrderItem{ProductID: 2, Title: "Espresso", Price: 90, Qty: 1, LineTotal: 90}
)

type txList []models.Transaction

func (l txList) List() []models.Transaction { return l }

func sample() txList {
	return txList{
		tx(day(16, 14), models.PaymentCash, latte),
		tx(day(14, 9), models.PaymentGCash, espresso),
		tx(day(12, 8), models.PaymentCash, latte, espresso),
		tx(day(5, 10), models.PaymentCash, espresso), // outside the week
	}
}

func TestRangeFor(t *testing.T) {
	start := time.Date(2026, time.February, 10, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, Range{From: day0(2026, 2, 10), To: day0(2026, 2, 10)}, RangeFor(SingleDay, start))
	assert.Equal(t, Range{From: day0(2026, 2, 10), To: day0(2026, 2, 16)}, RangeFor(Weekly, start))
	assert.Equal(t, Range{From: day0(2026, 2, 10), To: day0(2026, 2, 28)}, RangeFor(Monthly, start))
	assert.Equal(t, Range{From: day0(2026, 2, 10), To: day0(2026, 12, 31)}, RangeFor(Yearly, start))
}

func day0(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]Duration{
		"Single Day": SingleDay, "single_day": SingleDay, "weekly": Weekly, "MONTHLY": Monthly, "": Daily,
	} {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseDuration("hourly")
	assert.Error(t, err)
}

func TestBuildWeekly(t *testing.T) {
	r := Build(sample(), RangeFor(Weekly, day(12, 0)), Weekly)

	assert.Equal(t, "2026-10-12", r.From)
	assert.Equal(t, "2026-10-18", r.To)
	require.Len(t, r.Points, 7)
	assert.Equal(t, "Mon", r.Points[0].Label)
	assert.Equal(t, 330.0, r.Points[0].Total)
	assert.Equal(t, 90.0, r.Points[2].GCash)
	assert.Equal(t, 240.0, r.Points[4].Cash)
	assert.Zero(t, r.Points[6].Count)

	assert.Equal(t, GrandTotals{Cash: 570, GCash: 90, Total: 660, TransactionCount: 3, ItemCount: 6}, r.GrandTotals)

	require.Len(t, r.Products, 2)
	assert.Equal(t, "Latte", r.Products[0].Title)
	assert.Equal(t, 4, r.Products[0].Qty)
	assert.Equal(t, 480.0, r.Products[0].Revenue)
	assert.InDelta(t, 72.73, r.Products[0].Share, 0.001)
}

func TestBuildSingleDayUsesHours(t *testing.T) {
	r := Build(sample(), RangeFor(SingleDay, day(16, 0)), SingleDay)

	require.Len(t, r.Points, 24)
	assert.Equal(t, "14:00", r.Points[14].Label)
	assert.Equal(t, 240.0, r.Points[14].Total)
	assert.Equal(t, 1, r.GrandTotals.TransactionCount)
}

func TestBuildYearlyUsesMonths(t *testing.T) {
	r := Build(sample(), RangeFor(Yearly, day0(2026, 1, 1)), Yearly)

	require.Len(t, r.Points, 12)
	assert.Equal(t, "Oct", r.Points[9].Label)
	assert.Equal(t, 750.0, r.Points[9].Total)
}

func TestBuildFallsBackToDateString(t *testing.T) {
	legacy := models.Transaction{Date: "October 13, 2026 | 9:15 AM", TotalAmount: 50, PaymentMethod: models.PaymentCash}
	r := Build(txList{legacy}, RangeFor(Weekly, day(12, 0)), Weekly)
	assert.Equal(t, 50.0, r.Points[1].Total)
}

func TestWriteXLSX(t *testing.T) {
	r := Build(sample(), RangeFor(Weekly, day(12, 0)), Weekly)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, r))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, productsSheet}, f.GetSheetList())
	v, err := f.GetCellValue(productsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Latte", v)
}

func TestSalesReportHandlers(t *testing.T) {
	clk := clock.NewFakeClock(day(16, 18))
	app := fiber.New()
	app.Get("/reports/sales", SalesReportHandler(sample(), clk))
	app.Get("/reports/sales.xlsx", SalesReportXLSXHandler(sample(), clk))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reports/sales?duration=Weekly&start=2026-10-12", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/reports/sales?duration=single_day&start=2026-10-20", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/reports/sales.xlsx?duration=Monthly&start=2026-10-01", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "sales-2026-10-01-2026-10-31.xlsx")
}
