package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"starpos-backend/internal/inventory"
	"starpos-backend/internal/ledger"
	"starpos-backend/internal/models"

	"go.uber.org/zap"
)

var (
	ErrEmptyOrder          = errors.New("order has no items")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrInsufficientPayment = errors.New("amount received is less than the total")
	ErrInsufficientStock   = inventory.ErrInsufficientStock
)

const defaultCustomerName = "N/A"

type ProductCatalog interface {
	Get(id int64) (models.Product, error)
}

type Inventory interface {
	ConsumeFor(ctx context.Context, deductions []inventory.Deduction, policy inventory.StockPolicy, reference string, commit func(context.Context) error) (inventory.ConsumptionResult, error)
}

type Ledger interface {
	NextReceiptNumber() string
	Record(ctx context.Context, tx models.Transaction) (models.Transaction, error)
}

type Metrics interface {
	ObserveSale(method models.PaymentMethod, amount float64)
	ObserveConsumption(unit models.Unit, amount float64)
}

type Line struct {
	ProductID int64 `json:"productId"`
	Qty       int   `json:"qty"`
}

type Quote struct {
	ReceiptNo   string             `json:"receiptNo"`
	Items       []models.OrderItem `json:"items"`
	Quantity    int                `json:"quantity"`
	TotalAmount float64            `json:"totalAmount"`
}

type Order struct {
	ReceiptNo      string               `json:"receiptNo"`
	Lines          []Line               `json:"lines"`
	PaymentMethod  models.PaymentMethod `json:"paymentMethod"`
	AmountReceived float64              `json:"amountReceived"`
	CustomerName   string               `json:"customerName"`
}

type CompletionResult struct {
	Transaction models.Transaction           `json:"transaction"`
	Deductions  []inventory.AppliedDeduction `json:"deductions"`
	Skipped     []int64                      `json:"skipped"`
}

// Engine turns confirmed orders into ledger entries and stock deductions.
// Completions are serialized so a repeated submit cannot deduct twice.
type Engine struct {
	mu       sync.Mutex
	products ProductCatalog
	stock    Inventory
	ledger   Ledger
	policy   inventory.StockPolicy
	metrics  Metrics
	log      *zap.Logger
}

// NewEngine wires the engine. metrics may be nil.
func NewEngine(products ProductCatalog, stock Inventory, sales Ledger, policy inventory.StockPolicy, metrics Metrics, log *zap.Logger) *Engine {
	if policy == "" {
		policy = inventory.PolicyAllow
	}
	return &Engine{
		products: products,
		stock:    stock,
		ledger:   sales,
		policy:   policy,
		metrics:  metrics,
		log:      log,
	}
}

// Quote prices the lines against the current catalog. Lines with qty 0 are dropped.
func (e *Engine) Quote(lines []Line) (Quote, error) {
	q, _, err := e.price(lines)
	if err != nil {
		return Quote{}, err
	}
	q.ReceiptNo = e.ledger.NextReceiptNumber()
	return q, nil
}

// Complete validates payment, records the transaction, then deducts recipe
// quantities. Products are matched by id only. The stock check, the ledger
// write and the deduction run under the inventory lock; a sale rejected for
// stock is never recorded. If only the stock write fails, the result still
// carries the recorded transaction.
func (e *Engine) Complete(ctx context.Context, order Order) (CompletionResult, error) {
	if !order.PaymentMethod.Valid() {
		return CompletionResult{}, models.Invalid("paymentMethod", "must be Cash or GCash")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q, products, err := e.price(order.Lines)
	if err != nil {
		return CompletionResult{}, err
	}

	received := order.AmountReceived
	switch order.PaymentMethod {
	case models.PaymentCash:
		if math.IsNaN(received) || received < q.TotalAmount {
			return CompletionResult{}, fmt.Errorf("%w: total %.2f, received %.2f", ErrInsufficientPayment, q.TotalAmount, received)
		}
	case models.PaymentGCash:
		received = q.TotalAmount
	}

	receiptNo := strings.TrimSpace(order.ReceiptNo)
	if receiptNo == "" {
		receiptNo = e.ledger.NextReceiptNumber()
	} else {
		n, err := ledger.ParseReceiptNumber(receiptNo)
		if err != nil {
			return CompletionResult{}, err
		}
		receiptNo = ledger.FormatReceiptNumber(n)
	}
	customer := strings.TrimSpace(order.CustomerName)
	if customer == "" {
		customer = defaultCustomerName
	}

	var (
		tx       models.Transaction
		recorded bool
	)
	record := func(ctx context.Context) error {
		var err error
		tx, err = e.ledger.Record(ctx, models.Transaction{
			ReceiptNo:      receiptNo,
			Quantity:       q.Quantity,
			OrderItems:     q.Items,
			TotalAmount:    q.TotalAmount,
			PaymentMethod:  order.PaymentMethod,
			CustomerName:   customer,
			AmountReceived: received,
			Change:         round2(received - q.TotalAmount),
		})
		if err != nil {
			return err
		}
		recorded = true
		if e.metrics != nil {
			e.metrics.ObserveSale(tx.PaymentMethod, tx.TotalAmount)
		}
		return nil
	}

	deductions := recipeDeductions(q.Items, products)
	consumed, err := e.stock.ConsumeFor(ctx, deductions, e.policy, receiptNo, record)
	if err != nil {
		if !recorded {
			return CompletionResult{}, err
		}
		e.log.Error("stock not deducted for recorded sale", zap.String("receipt_no", tx.ReceiptNo), zap.Error(err))
		return CompletionResult{Transaction: tx}, fmt.Errorf("sale %s recorded but stock not deducted: %w", tx.ReceiptNo, err)
	}

	result := CompletionResult{
		Transaction: tx,
		Deductions:  consumed.Applied,
		Skipped:     consumed.Skipped,
	}
	if len(consumed.Skipped) > 0 {
		e.log.Warn("recipe ingredients missing from stock", zap.String("receipt_no", tx.ReceiptNo), zap.Int64s("ingredient_ids", consumed.Skipped))
	}
	if e.metrics != nil {
		for _, d := range consumed.Applied {
			e.metrics.ObserveConsumption(d.Unit, d.Used)
		}
	}

	e.log.Info("checkout completed",
		zap.String("receipt_no", tx.ReceiptNo),
		zap.Float64("total", tx.TotalAmount),
		zap.Int("deductions", len(result.Deductions)))
	return result, nil
}

func (e *Engine) price(lines []Line) (Quote, map[int64]models.Product, error) {
	var q Quote
	products := make(map[int64]models.Product, len(lines))
	pos := make(map[int64]int, len(lines))

	for i, line := range lines {
		if line.Qty < 0 {
			return Quote{}, nil, models.Invalid(fmt.Sprintf("lines[%d].qty", i), "cannot be negative")
		}
		if line.Qty == 0 {
			continue
		}

		p, err := e.products.Get(line.ProductID)
		if err != nil {
			return Quote{}, nil, fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
		}
		products[p.ID] = p

		if idx, ok := pos[p.ID]; ok {
			item := &q.Items[idx]
			item.Qty += line.Qty
			item.LineTotal = round2(item.Price * float64(item.Qty))
		} else {
			pos[p.ID] = len(q.Items)
			q.Items = append(q.Items, models.OrderItem{
				ProductID: p.ID,
				Title:     p.Title,
				Price:     p.Price,
				Qty:       line.Qty,
				LineTotal: round2(p.Price * float64(line.Qty)),
			})
		}
		q.Quantity += line.Qty
	}
	if len(q.Items) == 0 {
		return Quote{}, nil, ErrEmptyOrder
	}

	for _, item := range q.Items {
		q.TotalAmount += item.LineTotal
	}
	q.TotalAmount = round2(q.TotalAmount)
	return q, products, nil
}

// recipeDeductions: quantityPerUnit * qty for each recipe line.
func recipeDeductions(items []models.OrderItem, products map[int64]models.Product) []inventory.Deduction {
	var out []inventory.Deduction
	for _, item := range items {
		for _, pi := range products[item.ProductID].Ingredients {
			out = append(out, inventory.Deduction{
				IngredientID: pi.IngredientID,
				Amount:       pi.QuantityPerUnit * float64(item.Qty),
			})
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
