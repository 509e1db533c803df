package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"starpos-backend/internal/models"
)

type Duration string

const (
	SingleDay Duration = "Single Day"
	Daily     Duration = "Daily"
	Weekly    Duration = "Weekly"
	Monthly   Duration = "Monthly"
	Yearly    Duration = "Yearly"
)

const dayLayout = "2006-01-02"

// ParseDuration accepts the display names and their snake/kebab forms.
func ParseDuration(s string) (Duration, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "single day":
		return SingleDay, nil
	case "daily", "":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	case "yearly":
		return Yearly, nil
	}
	return "", models.Invalid("duration", fmt.Sprintf("unknown duration %q", s))
}

// Range is a span of whole days, both ends inclusive.
type Range struct {
	From time.Time
	To   time.Time
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RangeFor derives the end date from the start date the way the report
// screen does: a week is start+6 days, a month ends on its last day, a year on Dec 31.
func RangeFor(d Duration, start time.Time) Range {
	from := startOfDay(start)
	switch d {
	case Weekly:
		return Range{From: from, To: from.AddDate(0, 0, 6)}
	case Monthly:
		return Range{From: from, To: time.Date(from.Year(), from.Month()+1, 0, 0, 0, 0, 0, from.Location())}
	case Yearly:
		return Range{From: from, To: time.Date(from.Year(), time.December, 31, 0, 0, 0, 0, from.Location())}
	default:
		return Range{From: from, To: from}
	}
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To.AddDate(0, 0, 1))
}

type Point struct {
	Label string  `json:"label"`
	Start string  `json:"start"`
	Cash  float64 `json:"cash"`
	GCash float64 `json:"gcash"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type ProductSales struct {
	ProductID int64   `json:"productId"`
	Title     string  `json:"title"`
	Qty       int     `json:"qty"`
	Revenue   float64 `json:"revenue"`
	Share     float64 `json:"share"` // percent of revenue
}

type GrandTotals struct {
	Cash             float64 `json:"cash"`
	GCash            float64 `json:"gcash"`
	Total            float64 `json:"total"`
	TransactionCount int     `json:"transactionCount"`
	ItemCount        int     `json:"itemCount"`
}

type Report struct {
	Duration    Duration       `json:"duration"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Points      []Point        `json:"points"`
	Products    []ProductSales `json:"products"`
	GrandTotals GrandTotals    `json:"grandTotals"`
}

// Build aggregates the transactions that fall inside rng. Buckets are hours
// for a single day, days for weeks and months, and months for a year. Every
// bucket in the range is present, including empty ones.
func Build(txs []models.Transaction, rng Range, d Duration) Report {
	loc := rng.From.Location()
	starts := bucketStarts(rng, d)
	points := make([]Point, len(starts))
	for i, s := range starts {
		points[i] = Point{Label: bucketLabel(s, d), Start: s.Format(time.RFC3339)}
	}

	var (
		grand    GrandTotals
		products = map[int64]*ProductSales{}
	)
	for _, tx := range txs {
		at := tx.Timestamp(loc)
		if at.IsZero() || !rng.Contains(at) {
			continue
		}

		idx := sort.Search(len(starts), func(i int) bool { return starts[i].After(at) }) - 1
		if idx < 0 {
			continue
		}
		p := &points[idx]
		p.Total += tx.TotalAmount
		p.Count++
		switch tx.PaymentMethod {
		case models.PaymentCash:
			p.Cash += tx.TotalAmount
			grand.Cash += tx.TotalAmount
		case models.PaymentGCash:
			p.GCash += tx.TotalAmount
			grand.GCash += tx.TotalAmount
		}
		grand.Total += tx.TotalAmount
		grand.TransactionCount++

		for _, item := range tx.OrderItems {
			ps, ok := products[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Title: item.Title}
				products[item.ProductID] = ps
			}
			ps.Qty += item.Qty
			ps.Revenue += item.LineTotal
			grand.ItemCount += item.Qty
		}
	}

	for i := range points {
		points[i].Cash = round2(points[i].Cash)
		points[i].GCash = round2(points[i].GCash)
		points[i].Total = round2(points[i].Total)
	}
	grand.Cash = round2(grand.Cash)
	grand.GCash = round2(grand.GCash)
	grand.Total = round2(grand.Total)

	return Report{
		Duration:    d,
		From:        rng.From.Format(dayLayout),
		To:          rng.To.Format(dayLayout),
		Points:      points,
		Products:    rankProducts(products),
		GrandTotals: grand,
	}
}

func rankProducts(products map[int64]*ProductSales) []ProductSales {
	var revenue float64
	out := make([]ProductSales, 0, len(products))
	for _, ps := range products {
		revenue += ps.Revenue
		out = append(out, *ps)
	}
	for i := range out {
		out[i].Revenue = round2(out[i].Revenue)
		if revenue > 0 {
			out[i].Share = round2(out[i].Revenue / revenue * 100)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

func bucketStarts(rng Range, d Duration) []time.Time {
	end := rng.To.AddDate(0, 0, 1)
	var out []time.Time
	switch d {
	case SingleDay, Daily:
		for t := rng.From; t.Before(end); t = t.Add(time.Hour) {
			out = append(out, t)
		}
	case Yearly:
		first := time.Date(rng.From.Year(), rng.From.Month(), 1, 0, 0, 0, 0, rng.From.Location())
		out = append(out, rng.From)
		for t := first.AddDate(0, 1, 0); t.Before(end); t = t.AddDate(0, 1, 0) {
			out = append(out, t)
		}
	default:
		for t := rng.From; t.Before(end); t = t.AddDate(0, 0, 1) {
			out = append(out, t)
		}
	}
	return out
}

func bucketLabel(t time.Time, d Duration) string {
	switch d {
	case SingleDay, Daily:
		return t.Format("15:04")
	case Weekly:
		return t.Format("Mon")
	case Yearly:
		return t.Format("Jan")
	default:
		return t.Format("Jan 2")
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
