package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/models"
	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateReceipt    = errors.New("receipt number already recorded")
	ErrStaleReceipt        = errors.New("receipt number already issued")
)

const receiptDigits = 6

func FormatReceiptNumber(n int) string {
	return fmt.Sprintf("%0*d", receiptDigits, n)
}

func ParseReceiptNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, models.Invalid("receiptNo", fmt.Sprintf("%q is not a receipt number", s))
	}
	return n, nil
}

// Ledger keeps transactions most recent first, together with the last issued
// receipt number. Both documents are written in one PutMany.
type Ledger struct {
	mu    sync.Mutex
	kv    storage.Store
	ids   idgen.Generator
	clock clock.Clock
	log   *zap.Logger
	items []models.Transaction
	last  int
}

func New(kv storage.Store, ids idgen.Generator, clk clock.Clock, log *zap.Logger) *Ledger {
	return &Ledger{kv: kv, ids: ids, clock: clk, log: log}
}

// Load reads both documents. A counter behind the highest recorded receipt
// (a crash between two separate writes in older data) is moved forward and saved.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var items []models.Transaction
	if _, err := storage.GetJSON(ctx, l.kv, storage.KeyTransactions, &items); err != nil {
		return err
	}

	last, err := l.readCounter(ctx)
	if err != nil {
		return err
	}

	highest := 0
	for _, tx := range items {
		if n, err := ParseReceiptNumber(tx.ReceiptNo); err == nil && n > highest {
			highest = n
		}
	}

	l.items = items
	l.last = last
	if highest > last {
		l.log.Warn("receipt counter behind ledger, repairing",
			zap.String("counter", FormatReceiptNumber(last)),
			zap.String("highest", FormatReceiptNumber(highest)))
		if err := storage.PutJSON(ctx, l.kv, storage.KeyLastReceiptNumber, FormatReceiptNumber(highest)); err != nil {
			return fmt.Errorf("repair receipt counter: %w", err)
		}
		l.last = highest
	}

	l.log.Info("ledger loaded", zap.Int("transactions", len(items)), zap.String("last_receipt", FormatReceiptNumber(l.last)))
	return nil
}

// readCounter accepts the JSON string form and a bare legacy value.
func (l *Ledger) readCounter(ctx context.Context) (int, error) {
	raw, ok, err := l.kv.Get(ctx, storage.KeyLastReceiptNumber)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", storage.KeyLastReceiptNumber, err)
	}
	if !ok {
		return 0, nil
	}

	value := string(raw)
	var s string
	if json.Unmarshal(raw, &s) == nil {
		value = s
	}
	n, err := ParseReceiptNumber(value)
	if err != nil {
		l.log.Warn("unreadable receipt counter, starting over", zap.String("value", value))
		return 0, nil
	}
	return n, nil
}

func (l *Ledger) NextReceiptNumber() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return FormatReceiptNumber(l.last + 1)
}

// Record prepends tx and advances the counter to its receipt number, which
// must be above every number issued so far, deleted ones included. ID and
// CreatedAt are assigned here; Date is stamped when empty.
func (l *Ledger) Record(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	n, err := ParseReceiptNumber(tx.ReceiptNo)
	if err != nil {
		return models.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx.ReceiptNo = FormatReceiptNumber(n)
	if l.indexOfReceipt(tx.ReceiptNo) >= 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrDuplicateReceipt, tx.ReceiptNo)
	}
	if n <= l.last {
		return models.Transaction{}, fmt.Errorf("%w: %s, next is %s", ErrStaleReceipt, tx.ReceiptNo, FormatReceiptNumber(l.last+1))
	}

	now := l.clock.Now()
	tx.ID = l.ids.Next()
	tx.CreatedAt = now
	if tx.Date == "" {
		tx.Date = now.Format(models.ReceiptDateLayout)
	}

	next := make([]models.Transaction, 0, len(l.items)+1)
	next = append(next, tx)
	next = append(next, l.items...)

	txEntry, err := storage.JSONEntry(storage.KeyTransactions, next)
	if err != nil {
		return models.Transaction{}, err
	}
	counterEntry, err := storage.JSONEntry(storage.KeyLastReceiptNumber, FormatReceiptNumber(n))
	if err != nil {
		return models.Transaction{}, err
	}
	if err := l.kv.PutMany(ctx, []storage.Entry{txEntry, counterEntry}); err != nil {
		return models.Transaction{}, fmt.Errorf("record transaction %s: %w", tx.ReceiptNo, err)
	}

	l.items = next
	l.last = n
	l.log.Info("transaction recorded",
		zap.String("receipt_no", tx.ReceiptNo),
		zap.Float64("total", tx.TotalAmount),
		zap.String("payment_method", string(tx.PaymentMethod)))
	return tx, nil
}

// Delete removes a transaction. The receipt counter is never rolled back.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, tx := range l.items {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTransactionNotFound
	}

	next := make([]models.Transaction, 0, len(l.items)-1)
	next = append(next, l.items[:idx]...)
	next = append(next, l.items[idx+1:]...)
	if err := storage.PutJSON(ctx, l.kv, storage.KeyTransactions, next); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	l.items = next
	l.log.Info("transaction deleted", zap.Int64("transaction_id", id))
	return nil
}

func (l *Ledger) List() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Transaction(nil), l.items...)
}

func (l *Ledger) Get(id int64) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tx := range l.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return models.Transaction{}, ErrTransactionNotFound
}

func (l *Ledger) FindByReceipt(receiptNo string) (models.Transaction, error) {
	n, err := ParseReceiptNumber(receiptNo)
	if err != nil {
		return models.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if idx := l.indexOfReceipt(FormatReceiptNumber(n)); idx >= 0 {
		return l.items[idx], nil
	}
	return models.Transaction{}, ErrTransactionNotFound
}

func (l *Ledger) indexOfReceipt(receiptNo string) int {
	for i, tx := range l.items {
		if tx.ReceiptNo == receiptNo {
			return i
		}
	}
	return -1
}
