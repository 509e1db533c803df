package sqlstore

import (
	"context"
	"fmt"
	"testing"

	"starpos-backend/internal/database"
	"starpos-backend/internal/storage"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	v, ok, err := s.Get(context.Background(), storage.KeyIngredients)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestPutOverwritesDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, storage.KeyIngredients, []byte(`[{"id":1}]`)))
	require.NoError(t, s.Put(ctx, storage.KeyIngredients, []byte(`[{"id":1},{"id":2}]`)))

	v, ok, err := s.Get(ctx, storage.KeyIngredients)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(v))
}

func TestPutManyWritesAllKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.PutMany(ctx, []storage.Entry{
		{Key: storage.KeyTransactions, Value: []byte(`[{"receiptNo":"000001"}]`)},
		{Key: storage.KeyLastReceiptNumber, Value: []byte(`"000001"`)},
	})
	require.NoError(t, err)

	var last string
	ok, err := storage.GetJSON(ctx, s, storage.KeyLastReceiptNumber, &last)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "000001", last)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, storage.KeyAccount, []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, storage.KeyAccount))

	_, ok, err := s.Get(ctx, storage.KeyAccount)
	require.NoError(t, err)
	assert.False(t, ok)
}
