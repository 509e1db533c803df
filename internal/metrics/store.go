package metrics

import (
	"context"

	"starpos-backend/internal/storage"

	"go.uber.org/zap"
)

// InstrumentStore logs and counts every failed storage call.
func InstrumentStore(s storage.Store, c *Collectors, log *zap.Logger) storage.Store {
	return &instrumented{Store: s, c: c, log: log}
}

type instrumented struct {
	storage.Store
	c   *Collectors
	log *zap.Logger
}

func (i *instrumented) fail(op, key string, err error) {
	i.c.StorageError(op, key)
	i.log.Error("storage operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := i.Store.Get(ctx, key)
	if err != nil {
		i.fail("get", key, err)
	}
	return v, ok, err
}

func (i *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := i.Store.Put(ctx, key, value)
	if err != nil {
		i.fail("put", key, err)
	}
	return err
}

func (i *instrumented) PutMany(ctx context.Context, entries []storage.Entry) error {
	err := i.Store.PutMany(ctx, entries)
	if err != nil {
		for _, e := range entries {
			i.fail("put_many", e.Key, err)
		}
	}
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	err := i.Store.Delete(ctx, key)
	if err != nil {
		i.fail("delete", key, err)
	}
	return err
}
