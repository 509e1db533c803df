package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document keys, one per independently persisted collection.
const (
	KeyIngredients       = "ingredients"
	KeyProducts          = "products"
	KeyUserInfo          = "userInfo"
	KeyTransactions      = "transactions"
	KeyLastReceiptNumber = "lastReceiptNumber"
	KeyNotifications     = "notifications"
	KeyLowStockMarkers   = "lowStockMarkers"
	KeyStockMovements    = "stockMovements"
	KeyAccount           = "account"
)

type Entry struct {
	Key   string
	Value []byte
}

// Store is a key-value document store. PutMany is all-or-nothing.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	PutMany(ctx context.Context, entries []Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the document at key into dst. It reports false when the key was never written.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func JSONEntry(key string, v any) (Entry, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Entry{Key: key, Value: b}, nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	e, err := JSONEntry(key, v)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, e.Key, e.Value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
