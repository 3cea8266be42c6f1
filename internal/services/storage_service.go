package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/abbasons/ledger/internal/models"
)

// Namespaced keys for the on-device working set. Each collection is
// independently loadable so a corrupt entry only loses that collection.
const (
	keyCustomers    = "ledger_customers"
	keyTransactions = "ledger_transactions"
	keySyncQueue    = "sync_queue"
	keyLastSync     = "last_sync_timestamp"
)

var storageKeys = []string{keyCustomers, keyTransactions, keySyncQueue, keyLastSync}

// StorageService persists the full working set across restarts. A missing
// or unreachable store is never fatal: saves report false, loads report
// absent, and the caller keeps running on in-memory state.
type StorageService struct {
	redis *redis.Client
}

func NewStorageService(redisClient *redis.Client) *StorageService {
	return &StorageService{redis: redisClient}
}

// Save serializes value under key. Failures are reported, never raised.
func (s *StorageService) Save(ctx context.Context, key string, value any) bool {
	if s.redis == nil {
		return false
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[STORAGE] Save serialization failed for %s: %v", key, err)
		return false
	}

	if err := s.redis.Set(ctx, key, data, 0).Err(); err != nil {
		log.Printf("[STORAGE] Save failed for %s: %v", key, err)
		return false
	}
	return true
}

// Load deserializes key into dest. Missing, unreachable or malformed
// entries all report absent (false) without touching dest's zero value
// semantics for the caller.
func (s *StorageService) Load(ctx context.Context, key string, dest any) bool {
	if s.redis == nil {
		return false
	}

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("[STORAGE] Load failed for %s: %v", key, err)
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[STORAGE] Corrupt entry for %s, treating as absent: %v", key, err)
		return false
	}
	return true
}

// Remove deletes a single key.
func (s *StorageService) Remove(ctx context.Context, key string) bool {
	if s.redis == nil {
		return false
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		log.Printf("[STORAGE] Remove failed for %s: %v", key, err)
		return false
	}
	return true
}

// ClearAll removes every key this store owns.
func (s *StorageService) ClearAll(ctx context.Context) {
	for _, key := range storageKeys {
		s.Remove(ctx, key)
	}
}

// StorageSize reports the approximate size of the persisted working set.
func (s *StorageService) StorageSize(ctx context.Context) string {
	if s.redis == nil {
		return "0.00 KB"
	}

	total := 0
	for _, key := range storageKeys {
		n, err := s.redis.StrLen(ctx, key).Result()
		if err != nil {
			continue
		}
		total += int(n) + len(key)
	}
	return fmt.Sprintf("%.2f KB", float64(total)/1024)
}

func (s *StorageService) SaveCustomers(ctx context.Context, customers []models.Customer) bool {
	return s.Save(ctx, keyCustomers, customers)
}

func (s *StorageService) LoadCustomers(ctx context.Context) []models.Customer {
	var customers []models.Customer
	if !s.Load(ctx, keyCustomers, &customers) {
		return []models.Customer{}
	}
	return customers
}

func (s *StorageService) SaveTransactions(ctx context.Context, transactions []models.Transaction) bool {
	return s.Save(ctx, keyTransactions, transactions)
}

func (s *StorageService) LoadTransactions(ctx context.Context) []models.Transaction {
	var transactions []models.Transaction
	if !s.Load(ctx, keyTransactions, &transactions) {
		return []models.Transaction{}
	}
	return transactions
}

func (s *StorageService) SaveSyncQueue(ctx context.Context, queue []models.Transaction) bool {
	return s.Save(ctx, keySyncQueue, queue)
}

func (s *StorageService) LoadSyncQueue(ctx context.Context) []models.Transaction {
	var queue []models.Transaction
	if !s.Load(ctx, keySyncQueue, &queue) {
		return []models.Transaction{}
	}
	return queue
}

// SetLastSync records the instant of the last successful sync.
func (s *StorageService) SetLastSync(ctx context.Context, at time.Time) bool {
	return s.Save(ctx, keyLastSync, at)
}

func (s *StorageService) GetLastSync(ctx context.Context) *time.Time {
	var at time.Time
	if !s.Load(ctx, keyLastSync, &at) {
		return nil
	}
	return &at
}
