package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/abbasons/ledger/internal/models"
)

func TestStorageService_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("customers round trip", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		customers := []models.Customer{
			{ID: "1", Name: "Haji Karim", Balance: 500, DrCr: models.StatusDR, LastTransaction: "2026-08-01"},
			{ID: "2", Name: "Rashid Bhai", Balance: -200, DrCr: models.StatusCR},
		}
		data, _ := json.Marshal(customers)

		mock.ExpectSet(keyCustomers, data, 0).SetVal("OK")
		mock.ExpectGet(keyCustomers).SetVal(string(data))

		assert.True(t, storage.SaveCustomers(ctx, customers))
		assert.Equal(t, customers, storage.LoadCustomers(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty queue round trip", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		data, _ := json.Marshal([]models.Transaction{})

		mock.ExpectSet(keySyncQueue, data, 0).SetVal("OK")
		mock.ExpectGet(keySyncQueue).SetVal(string(data))

		assert.True(t, storage.SaveSyncQueue(ctx, []models.Transaction{}))
		assert.Empty(t, storage.LoadSyncQueue(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last sync round trip", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		at := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
		data, _ := json.Marshal(at)

		mock.ExpectSet(keyLastSync, data, 0).SetVal("OK")
		mock.ExpectGet(keyLastSync).SetVal(string(data))

		assert.True(t, storage.SetLastSync(ctx, at))
		got := storage.GetLastSync(ctx)
		assert.NotNil(t, got)
		assert.True(t, at.Equal(*got))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorageService_AbsentAndCorrupt(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key is empty collection", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		mock.ExpectGet(keyTransactions).RedisNil()

		assert.Empty(t, storage.LoadTransactions(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry is treated as absent", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		mock.ExpectGet(keyCustomers).SetVal("{not json")

		assert.Empty(t, storage.LoadCustomers(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing last sync is nil", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		storage := NewStorageService(db)

		mock.ExpectGet(keyLastSync).RedisNil()

		assert.Nil(t, storage.GetLastSync(ctx))
	})
}

func TestStorageService_NilClient(t *testing.T) {
	// No local store at all: everything degrades, nothing panics.
	ctx := context.Background()
	storage := NewStorageService(nil)

	assert.False(t, storage.SaveCustomers(ctx, []models.Customer{{ID: "1"}}))
	assert.Empty(t, storage.LoadCustomers(ctx))
	assert.Empty(t, storage.LoadSyncQueue(ctx))
	assert.Nil(t, storage.GetLastSync(ctx))
	assert.Equal(t, "0.00 KB", storage.StorageSize(ctx))
	storage.ClearAll(ctx)
}

func TestStorageService_ClearAll(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	storage := NewStorageService(db)

	for _, key := range storageKeys {
		mock.ExpectDel(key).SetVal(1)
	}

	storage.ClearAll(ctx)
	assert.NoError(t, mock.ExpectationsWereMet())
}
