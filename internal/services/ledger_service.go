package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/abbasons/ledger/internal/models"
)

// ErrValidation marks a request rejected before any state mutation.
var ErrValidation = errors.New("validation failed")

// ErrCustomerNotFound is returned when a transaction references an unknown
// customer.
var ErrCustomerNotFound = errors.New("customer not found")

// LedgerService owns the in-memory working set (customers, transaction
// history, sync queue) and guarantees that every recorded transaction
// reaches the remote ledger at least once without ever blocking on the
// network for local correctness. All state is mutated under one mutex and
// written through to the local store after every change.
type LedgerService struct {
	mu           sync.Mutex
	customers    []models.Customer
	transactions []models.Transaction // newest first, like the history view
	queue        []models.Transaction // FIFO, membership by transaction id
	lastSync     *time.Time
	online       bool
	flushing     bool

	storage  *StorageService
	remote   RemoteLedger
	notifier *Notifier

	now   func() time.Time
	txSeq uint64
}

// RecordTransactionRequest carries the fields the UI submits for a new
// ledger entry. Amount is optional: absent means derive it from
// weight/rate/item; present means the operator typed it and it is taken
// as-is.
type RecordTransactionRequest struct {
	CustomerID  string      `json:"customerId" validate:"required"`
	Date        string      `json:"date"`
	Description string      `json:"description" validate:"required"`
	Item        string      `json:"item"`
	Weight      string      `json:"weight"`
	Rate        string      `json:"rate"`
	DrCr        models.DrCr `json:"drCr" validate:"required,oneof=Debit Credit"`
	Amount      *float64    `json:"amount" validate:"omitempty,gt=0"`
}

func NewLedgerService(storage *StorageService, remote RemoteLedger, notifier *Notifier) *LedgerService {
	return &LedgerService{
		storage:  storage,
		remote:   remote,
		notifier: notifier,
		now:      time.Now,
	}
}

// Restore loads the persisted working set. Absent or corrupt collections
// come back empty; startup never fails on storage problems.
func (s *LedgerService) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers = s.storage.LoadCustomers(ctx)
	s.transactions = s.storage.LoadTransactions(ctx)
	s.queue = s.storage.LoadSyncQueue(ctx)
	s.lastSync = s.storage.GetLastSync(ctx)

	// The history and the queue are written through as separate keys, so a
	// crash between the two writes can leave an unsynced transaction outside
	// the persisted queue. Adopt those back, oldest first; the remote side
	// dedupes by transaction id, so re-adopting an entry that was delivered
	// but not yet marked synced cannot double-post.
	queued := make(map[string]bool, len(s.queue))
	for _, tx := range s.queue {
		queued[tx.ID] = true
	}
	adopted := 0
	for i := len(s.transactions) - 1; i >= 0; i-- {
		tx := s.transactions[i]
		if !tx.Synced && !queued[tx.ID] {
			s.queue = append(s.queue, tx)
			queued[tx.ID] = true
			adopted++
		}
	}
	if adopted > 0 {
		log.Printf("[SYNC] Adopted %d unsynced transactions missing from the queue", adopted)
		s.storage.SaveSyncQueue(ctx, s.queue)
	}

	log.Printf("[SYNC] Restored state: %d customers, %d transactions, %d queued",
		len(s.customers), len(s.transactions), len(s.queue))
}

// SetOnline records the current reachability as reported by the
// connectivity monitor. Flushing on the offline-to-online edge is the
// monitor's job, not a side effect here.
func (s *LedgerService) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

// RecordTransaction appends a transaction to the history and applies it to
// the owning customer's balance synchronously, regardless of network state.
// Delivery is attempted immediately when reachable; a failed or impossible
// delivery queues the transaction for the next flush.
func (s *LedgerService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (models.Transaction, error) {
	if strings.TrimSpace(req.Description) == "" {
		return models.Transaction{}, fmt.Errorf("%w: description is required", ErrValidation)
	}

	amount := 0.0
	if req.Amount != nil {
		amount = *req.Amount
	} else {
		amount = CalculateAmount(req.Weight, req.Rate, req.Item)
	}
	if amount <= 0 {
		return models.Transaction{}, fmt.Errorf("%w: amount is required", ErrValidation)
	}

	s.mu.Lock()

	idx := s.customerIndex(req.CustomerID)
	if idx < 0 {
		s.mu.Unlock()
		return models.Transaction{}, ErrCustomerNotFound
	}

	now := s.now()
	date := req.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}

	tx := models.Transaction{
		ID:           s.nextTransactionID(now),
		CustomerID:   req.CustomerID,
		CustomerName: s.customers[idx].Name,
		Date:         date,
		Description:  req.Description,
		Item:         req.Item,
		Weight:       req.Weight,
		Rate:         req.Rate,
		Amount:       amount,
		DrCr:         req.DrCr,
		Timestamp:    now,
		Synced:       false,
	}

	// Local state first: the observed balance is consistent with the
	// recorded history before any network attempt begins.
	s.transactions = append([]models.Transaction{tx}, s.transactions...)
	s.applyToCustomer(idx, amount, req.DrCr, date)
	online := s.online
	s.persistLocked(ctx)
	s.mu.Unlock()

	if !online {
		s.enqueue(ctx, tx)
		s.notifier.Warning("Saved offline")
		return s.transaction(tx.ID), nil
	}

	if err := s.remote.SubmitTransaction(ctx, tx); err != nil {
		log.Printf("[SYNC] Immediate delivery of %s failed, queueing: %v", tx.ID, err)
		s.enqueue(ctx, tx)
		s.notifier.Warning("Saved locally")
		return s.transaction(tx.ID), nil
	}

	s.markSynced(ctx, tx.ID)
	s.notifier.Success("Transaction saved!")
	return s.transaction(tx.ID), nil
}

// Flush sends the whole queue to the remote ledger as one FIFO batch. The
// batch is all-or-nothing at this layer: on failure the queue is left
// untouched for a later retry. A flush while one is in flight is a no-op.
func (s *LedgerService) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.flushing || len(s.queue) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.flushing = true
	batch := make([]models.Transaction, len(s.queue))
	copy(batch, s.queue)
	s.mu.Unlock()

	err := s.remote.BatchSync(ctx, batch)

	s.mu.Lock()
	s.flushing = false
	if err != nil {
		s.mu.Unlock()
		log.Printf("[SYNC] Batch flush of %d transactions failed: %v", len(batch), err)
		s.notifier.Warning("Sync failed. Will retry.")
		return err
	}

	sent := make(map[string]bool, len(batch))
	for _, tx := range batch {
		sent[tx.ID] = true
	}

	remaining := s.queue[:0]
	for _, tx := range s.queue {
		if !sent[tx.ID] {
			remaining = append(remaining, tx)
		}
	}
	s.queue = remaining

	for i := range s.transactions {
		if sent[s.transactions[i].ID] {
			s.transactions[i].Synced = true
		}
	}

	at := s.now()
	s.lastSync = &at
	s.persistLocked(ctx)
	s.storage.SetLastSync(ctx, at)
	s.mu.Unlock()

	log.Printf("[SYNC] Flushed %d transactions", len(batch))
	s.notifier.Success("All changes synced!")
	return nil
}

// RefreshCustomers replaces the local customer set with the remote one.
func (s *LedgerService) RefreshCustomers(ctx context.Context) error {
	customers, err := s.remote.FetchCustomers(ctx)
	if err != nil {
		s.notifier.Warning("Using local data")
		return err
	}

	s.mu.Lock()
	s.customers = customers
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notifier.Success("Data loaded successfully!")
	return nil
}

// CreateCustomer adds a new customer with a zero opening balance.
func (s *LedgerService) CreateCustomer(ctx context.Context, name string) (models.Customer, error) {
	if strings.TrimSpace(name) == "" {
		return models.Customer{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	customer := models.Customer{
		ID:      generateCustomerID(),
		Name:    strings.TrimSpace(name),
		Balance: 0,
		DrCr:    models.StatusNill,
	}

	s.mu.Lock()
	s.customers = append(s.customers, customer)
	s.persistLocked(ctx)
	s.mu.Unlock()

	return customer, nil
}

// Customers returns customers matching a case-insensitive name search and
// an optional dr/cr/nill filter.
func (s *LedgerService) Customers(search, filter string) []models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(strings.TrimSpace(search))
	filter = strings.ToLower(strings.TrimSpace(filter))

	out := []models.Customer{}
	for _, c := range s.customers {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if filter != "" && filter != "all" && strings.ToLower(string(c.DrCr)) != filter {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Customer looks up a single customer by id.
func (s *LedgerService) Customer(id string) (models.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.customerIndex(id)
	if idx < 0 {
		return models.Customer{}, false
	}
	return s.customers[idx], true
}

// CustomerTransactions returns the history for one customer, newest first.
func (s *LedgerService) CustomerTransactions(customerID string) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Transaction{}
	for _, tx := range s.transactions {
		if tx.CustomerID == customerID {
			out = append(out, tx)
		}
	}
	return out
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *LedgerService) RecentTransactions(limit int) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.transactions) {
		limit = len(s.transactions)
	}
	out := make([]models.Transaction, limit)
	copy(out, s.transactions[:limit])
	return out
}

// BalanceSheet computes the aggregate position on demand.
func (s *LedgerService) BalanceSheet() models.BalanceSheet {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers := make([]models.Customer, len(s.customers))
	copy(customers, s.customers)
	return models.BalanceSheet{
		Stats:     CalculateStats(customers),
		Customers: customers,
	}
}

// Status reports the queue state for the UI badge.
func (s *LedgerService) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SyncStatus{
		Online:      s.online,
		QueueLength: len(s.queue),
		LastSync:    s.lastSync,
	}
}

// QueueLength returns the number of transactions awaiting acknowledgment.
func (s *LedgerService) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Reset destroys the entire working set, in memory and in the store.
func (s *LedgerService) Reset(ctx context.Context) {
	s.mu.Lock()
	s.customers = nil
	s.transactions = nil
	s.queue = nil
	s.lastSync = nil
	s.mu.Unlock()

	s.storage.ClearAll(ctx)
	log.Printf("[SYNC] Full data reset")
}

func (s *LedgerService) enqueue(ctx context.Context, tx models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, queued := range s.queue {
		if queued.ID == tx.ID {
			return
		}
	}
	s.queue = append(s.queue, tx)
	s.persistLocked(ctx)
}

func (s *LedgerService) markSynced(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Synced = true
			break
		}
	}
	s.persistLocked(ctx)
}

func (s *LedgerService) transaction(id string) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx
		}
	}
	return models.Transaction{}
}

// applyToCustomer mutates one customer's balance and derived status.
// Callers hold the mutex.
func (s *LedgerService) applyToCustomer(idx int, amount float64, drCr models.DrCr, date string) {
	c := &s.customers[idx]
	if drCr == models.DrCrDebit {
		c.Balance += amount
	} else {
		c.Balance -= amount
	}
	c.DrCr = DrCrStatus(c.Balance)
	c.LastTransaction = date
}

// persistLocked writes the working set through to the local store. Callers
// hold the mutex. Failures are already logged by the store and do not
// propagate: the in-memory state stays authoritative.
func (s *LedgerService) persistLocked(ctx context.Context) {
	s.storage.SaveCustomers(ctx, s.customers)
	s.storage.SaveTransactions(ctx, s.transactions)
	s.storage.SaveSyncQueue(ctx, s.queue)
}

func (s *LedgerService) customerIndex(id string) int {
	for i, c := range s.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// nextTransactionID yields ids that are unique and lexically ordered
// within a session even when two entries land in the same millisecond.
// Six digits keep the ordering well past any single-session volume.
func (s *LedgerService) nextTransactionID(now time.Time) string {
	s.txSeq++
	return fmt.Sprintf("txn-%d-%06d", now.UnixMilli(), s.txSeq)
}

func generateCustomerID() string {
	const digits = "0123456789"
	b := make([]byte, 10)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return "cust-" + string(b)
}
