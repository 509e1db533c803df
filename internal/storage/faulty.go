package storage

import (
	"context"
	"sync"
)

// Faulty wraps a Store and fails writes to selected keys. Tests use it to
// exercise persistence-failure paths.
type Faulty struct {
	Store
	mu   sync.Mutex
	fail map[string]error
}

func NewFaulty(s Store) *Faulty {
	return &Faulty{Store: s, fail: map[string]error{}}
}

func (f *Faulty) FailWrites(key string, err error) {
	f.mu.Lock()
	f.fail[key] = err
	f.mu.Unlock()
}

func (f *Faulty) Heal() {
	f.mu.Lock()
	f.fail = map[string]error{}
	f.mu.Unlock()
}

func (f *Faulty) check(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[key]
}

func (f *Faulty) Put(ctx context.Context, key string, value []byte) error {
	if err := f.check(key); err != nil {
		return err
	}
	return f.Store.Put(ctx, key, value)
}

func (f *Faulty) PutMany(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := f.check(e.Key); err != nil {
			return err
		}
	}
	return f.Store.PutMany(ctx, entries)
}
