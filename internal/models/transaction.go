package models

import "time"

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "Cash"
	PaymentGCash PaymentMethod = "GCash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentGCash
}

// OrderItem: product snapshot taken at sale time
type OrderItem struct {
	ProductID int64   `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"lineTotal"`
}

type Transaction struct {
	ID             int64         `json:"id"`
	ReceiptNo      string        `json:"receiptNo"`
	Date           string        `json:"date"`
	CreatedAt      time.Time     `json:"createdAt"`
	Quantity       int           `json:"quantity"`
	OrderItems     []OrderItem   `json:"orderItems"`
	TotalAmount    float64       `json:"totalAmount"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	CustomerName   string        `json:"customerName"`
	AmountReceived float64       `json:"amountReceived"`
	Change         float64       `json:"change"`
}

// Timestamp falls back to parsing Date for records written without CreatedAt.
func (t Transaction) Timestamp(loc *time.Location) time.Time {
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt.In(loc)
	}
	for _, layout := range []string{ReceiptDateLayout, LongDateLayout} {
		if d, err := time.ParseInLocation(layout, t.Date, loc); err == nil {
			return d
		}
	}
	return time.Time{}
}
