package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/abbasons/ledger/internal/models"
)

type fakeRemote struct {
	mu        sync.Mutex
	customers []models.Customer
	submitErr error
	batchErr  error
	fetchErr  error
	submitted []models.Transaction
	batches   [][]models.Transaction

	batchStarted chan struct{}
	batchBlock   chan struct{}
}

func (f *fakeRemote) FetchCustomers(ctx context.Context) ([]models.Customer, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.customers, nil
}

func (f *fakeRemote) FetchTransactions(ctx context.Context, customerID string) ([]models.Transaction, error) {
	return nil, nil
}

func (f *fakeRemote) FetchBalanceSheet(ctx context.Context) (*models.BalanceSheet, error) {
	return &models.BalanceSheet{}, nil
}

func (f *fakeRemote) SubmitTransaction(ctx context.Context, tx models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, tx)
	return nil
}

func (f *fakeRemote) BatchSync(ctx context.Context, txs []models.Transaction) error {
	if f.batchStarted != nil {
		f.batchStarted <- struct{}{}
	}
	if f.batchBlock != nil {
		<-f.batchBlock
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.batchErr != nil {
		return f.batchErr
	}
	batch := make([]models.Transaction, len(txs))
	copy(batch, txs)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeRemote) Ping(ctx context.Context) bool { return true }

func (f *fakeRemote) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func newTestLedger(remote *fakeRemote) *LedgerService {
	return NewLedgerService(NewStorageService(nil), remote, NewNotifier())
}

func record(t *testing.T, s *LedgerService, customerID string, amount float64, drCr models.DrCr) models.Transaction {
	t.Helper()
	tx, err := s.RecordTransaction(context.Background(), RecordTransactionRequest{
		CustomerID:  customerID,
		Description: "goods",
		DrCr:        drCr,
		Amount:      &amount,
	})
	assert.NoError(t, err)
	return tx
}

func TestLedgerService_RecordTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("debit raises the balance to DR", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, err := ledger.CreateCustomer(ctx, "Haji Karim")
		assert.NoError(t, err)

		tx := record(t, ledger, customer.ID, 500, models.DrCrDebit)

		got, _ := ledger.Customer(customer.ID)
		assert.InDelta(t, 500.0, got.Balance, 0.0001)
		assert.Equal(t, models.StatusDR, got.DrCr)
		assert.True(t, tx.Synced)
		assert.Equal(t, customer.Name, tx.CustomerName)
		assert.Equal(t, 0, ledger.QueueLength())
	})

	t.Run("credit past zero flips to CR", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Rashid Bhai")

		record(t, ledger, customer.ID, 500, models.DrCrDebit)
		record(t, ledger, customer.ID, 700, models.DrCrCredit)

		got, _ := ledger.Customer(customer.ID)
		assert.InDelta(t, -200.0, got.Balance, 0.0001)
		assert.Equal(t, models.StatusCR, got.DrCr)
	})

	t.Run("balance matches full history fold", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")

		record(t, ledger, customer.ID, 1200.50, models.DrCrDebit)
		record(t, ledger, customer.ID, 99.99, models.DrCrCredit)
		record(t, ledger, customer.ID, 450, models.DrCrDebit)

		got, _ := ledger.Customer(customer.ID)
		history := ledger.CustomerTransactions(customer.ID)
		assert.InDelta(t, CalculateBalance(history), got.Balance, 0.0001)
		assert.Equal(t, DrCrStatus(got.Balance), got.DrCr)
	})

	t.Run("amount derived from weight and rate when not supplied", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")

		tx, err := ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID:  customer.ID,
			Description: "scrape lot",
			Item:        "Black Scrape",
			Weight:      "37.324",
			Rate:        "100",
			DrCr:        models.DrCrDebit,
		})
		assert.NoError(t, err)
		assert.InDelta(t, 100.0, tx.Amount, 0.0001)
	})

	t.Run("explicit amount overrides derivation", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")

		amount := 999.0
		tx, err := ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID:  customer.ID,
			Description: "negotiated price",
			Item:        "H Oil",
			Weight:      "10",
			Rate:        "50",
			DrCr:        models.DrCrDebit,
			Amount:      &amount,
		})
		assert.NoError(t, err)
		assert.InDelta(t, 999.0, tx.Amount, 0.0001)
	})

	t.Run("missing description is rejected before any mutation", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")

		amount := 100.0
		_, err := ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID: customer.ID,
			DrCr:       models.DrCrDebit,
			Amount:     &amount,
		})
		assert.ErrorIs(t, err, ErrValidation)
		got, _ := ledger.Customer(customer.ID)
		assert.Equal(t, 0.0, got.Balance)
		assert.Empty(t, ledger.RecentTransactions(0))
		assert.Equal(t, 0, ledger.QueueLength())
	})

	t.Run("unknown customer is rejected", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)

		amount := 100.0
		_, err := ledger.RecordTransaction(ctx, RecordTransactionRequest{
			CustomerID:  "missing",
			Description: "goods",
			DrCr:        models.DrCrDebit,
			Amount:      &amount,
		})
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("delivery failure keeps balance and queues once", func(t *testing.T) {
		remote := &fakeRemote{submitErr: ErrDeliveryFailed}
		ledger := newTestLedger(remote)
		ledger.SetOnline(true)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")

		tx := record(t, ledger, customer.ID, 500, models.DrCrDebit)

		got, _ := ledger.Customer(customer.ID)
		assert.InDelta(t, 500.0, got.Balance, 0.0001)
		assert.False(t, tx.Synced)
		assert.Equal(t, 1, ledger.QueueLength())
	})
}

func TestLedgerService_OfflineThenFlush(t *testing.T) {
	// Record three entries while unreachable, then flush on reconnect.
	ctx := context.Background()
	remote := &fakeRemote{}
	ledger := newTestLedger(remote)
	ledger.SetOnline(false)
	customer, _ := ledger.CreateCustomer(ctx, "Karim")

	record(t, ledger, customer.ID, 100, models.DrCrDebit)
	record(t, ledger, customer.ID, 200, models.DrCrDebit)
	record(t, ledger, customer.ID, 300, models.DrCrCredit)

	assert.Equal(t, 3, ledger.QueueLength())
	for _, tx := range ledger.RecentTransactions(0) {
		assert.False(t, tx.Synced)
	}
	assert.Nil(t, ledger.Status().LastSync)

	ledger.SetOnline(true)
	assert.NoError(t, ledger.Flush(ctx))

	assert.Equal(t, 0, ledger.QueueLength())
	for _, tx := range ledger.RecentTransactions(0) {
		assert.True(t, tx.Synced)
	}
	assert.NotNil(t, ledger.Status().LastSync)
	assert.Equal(t, 1, remote.batchCount())

	// FIFO: the batch carries the entries in creation order.
	batch := remote.batches[0]
	assert.Len(t, batch, 3)
	assert.InDelta(t, 100.0, batch[0].Amount, 0.0001)
	assert.InDelta(t, 200.0, batch[1].Amount, 0.0001)
	assert.InDelta(t, 300.0, batch[2].Amount, 0.0001)
}

func TestLedgerService_FlushFailureLeavesQueue(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{submitErr: ErrDeliveryFailed, batchErr: ErrDeliveryFailed}
	ledger := newTestLedger(remote)
	ledger.SetOnline(true)
	customer, _ := ledger.CreateCustomer(ctx, "Karim")

	record(t, ledger, customer.ID, 100, models.DrCrDebit)
	record(t, ledger, customer.ID, 200, models.DrCrDebit)
	record(t, ledger, customer.ID, 300, models.DrCrDebit)
	assert.Equal(t, 3, ledger.QueueLength())

	err := ledger.Flush(ctx)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 3, ledger.QueueLength())
	for _, tx := range ledger.RecentTransactions(0) {
		assert.False(t, tx.Synced)
	}

	var sawWarning bool
	for _, note := range ledger.notifier.Recent() {
		if note.Severity == "warning" && note.Message == "Sync failed. Will retry." {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning)
}

func TestLedgerService_FlushIdempotence(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue is a no-op", func(t *testing.T) {
		remote := &fakeRemote{}
		ledger := newTestLedger(remote)

		assert.NoError(t, ledger.Flush(ctx))
		assert.Equal(t, 0, remote.batchCount())
	})

	t.Run("re-entrant flush performs at most one batch", func(t *testing.T) {
		remote := &fakeRemote{
			batchStarted: make(chan struct{}, 1),
			batchBlock:   make(chan struct{}),
		}
		ledger := newTestLedger(remote)
		ledger.SetOnline(false)
		customer, _ := ledger.CreateCustomer(ctx, "Karim")
		record(t, ledger, customer.ID, 100, models.DrCrDebit)
		ledger.SetOnline(true)

		done := make(chan error, 1)
		go func() { done <- ledger.Flush(ctx) }()
		<-remote.batchStarted

		// Second flush while the first is in flight does nothing.
		assert.NoError(t, ledger.Flush(ctx))

		close(remote.batchBlock)
		assert.NoError(t, <-done)
		assert.Equal(t, 1, remote.batchCount())
		assert.Equal(t, 0, ledger.QueueLength())
	})
}

func TestLedgerService_RefreshCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces local set", func(t *testing.T) {
		remote := &fakeRemote{customers: []models.Customer{
			{ID: "r1", Name: "Remote One", Balance: 50, DrCr: models.StatusDR},
		}}
		ledger := newTestLedger(remote)
		ledger.CreateCustomer(ctx, "Local Only")

		assert.NoError(t, ledger.RefreshCustomers(ctx))
		customers := ledger.Customers("", "")
		assert.Len(t, customers, 1)
		assert.Equal(t, "Remote One", customers[0].Name)
	})

	t.Run("keeps local data on failure", func(t *testing.T) {
		remote := &fakeRemote{fetchErr: ErrDeliveryFailed}
		ledger := newTestLedger(remote)
		ledger.CreateCustomer(ctx, "Local Only")

		assert.Error(t, ledger.RefreshCustomers(ctx))
		assert.Len(t, ledger.Customers("", ""), 1)
	})
}

func TestLedgerService_CustomersFilter(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	ledger := newTestLedger(remote)
	ledger.SetOnline(true)

	karim, _ := ledger.CreateCustomer(ctx, "Haji Karim")
	rashid, _ := ledger.CreateCustomer(ctx, "Rashid Bhai")
	ledger.CreateCustomer(ctx, "Zero Balance")

	record(t, ledger, karim.ID, 500, models.DrCrDebit)
	record(t, ledger, rashid.ID, 200, models.DrCrCredit)

	assert.Len(t, ledger.Customers("", ""), 3)
	assert.Len(t, ledger.Customers("karim", ""), 1)
	assert.Len(t, ledger.Customers("", "dr"), 1)
	assert.Len(t, ledger.Customers("", "cr"), 1)
	assert.Len(t, ledger.Customers("", "nill"), 1)
	assert.Len(t, ledger.Customers("", "all"), 3)
}

func TestLedgerService_BalanceSheet(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	ledger := newTestLedger(remote)
	ledger.SetOnline(true)

	a, _ := ledger.CreateCustomer(ctx, "A")
	b, _ := ledger.CreateCustomer(ctx, "B")
	record(t, ledger, a.ID, 800, models.DrCrDebit)
	record(t, ledger, b.ID, 200, models.DrCrCredit)

	sheet := ledger.BalanceSheet()
	assert.Equal(t, 2, sheet.Stats.TotalCustomers)
	assert.InDelta(t, 800.0, sheet.Stats.TotalDR, 0.0001)
	assert.InDelta(t, 200.0, sheet.Stats.TotalCR, 0.0001)
	assert.InDelta(t, 600.0, sheet.Stats.NetPosition, 0.0001)
}

func TestLedgerService_Reset(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	ledger := newTestLedger(remote)
	ledger.SetOnline(false)
	customer, _ := ledger.CreateCustomer(ctx, "Karim")
	record(t, ledger, customer.ID, 100, models.DrCrDebit)

	ledger.Reset(ctx)

	assert.Empty(t, ledger.Customers("", ""))
	assert.Empty(t, ledger.RecentTransactions(0))
	assert.Equal(t, 0, ledger.QueueLength())
	assert.Nil(t, ledger.Status().LastSync)
}

func TestLedgerService_RestoreAdoptsStrandedTransactions(t *testing.T) {
	ctx := context.Background()

	stranded := models.Transaction{
		ID:           "txn-1756400000000-000001",
		CustomerID:   "cust-1111111111",
		CustomerName: "Haji Karim",
		Date:         "2026-08-28",
		Description:  "goods",
		Amount:       100,
		DrCr:         models.DrCrDebit,
		Timestamp:    time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Synced:       false,
	}
	customersJSON, err := json.Marshal([]models.Customer{
		{ID: stranded.CustomerID, Name: "Haji Karim", Balance: 100, DrCr: models.StatusDR, LastTransaction: "2026-08-28"},
	})
	assert.NoError(t, err)
	historyJSON, err := json.Marshal([]models.Transaction{stranded})
	assert.NoError(t, err)

	t.Run("unsynced entry missing from the queue is re-adopted and delivered", func(t *testing.T) {
		// State a crash between the history write and the queue write
		// leaves behind: the entry is persisted unsynced, the queue is not.
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(keyCustomers).SetVal(string(customersJSON))
		mock.ExpectGet(keyTransactions).SetVal(string(historyJSON))
		mock.ExpectGet(keySyncQueue).RedisNil()
		mock.ExpectGet(keyLastSync).RedisNil()
		mock.ExpectSet(keySyncQueue, historyJSON, 0).SetVal("OK")

		remote := &fakeRemote{}
		ledger := NewLedgerService(NewStorageService(db), remote, NewNotifier())
		ledger.Restore(ctx)

		assert.Equal(t, 1, ledger.QueueLength())
		assert.NoError(t, mock.ExpectationsWereMet())

		ledger.SetOnline(true)
		assert.NoError(t, ledger.Flush(ctx))
		assert.Equal(t, 0, ledger.QueueLength())
		assert.Equal(t, 1, remote.batchCount())
		remote.mu.Lock()
		assert.Equal(t, stranded.ID, remote.batches[0][0].ID)
		remote.mu.Unlock()
		assert.True(t, ledger.RecentTransactions(0)[0].Synced)
	})

	t.Run("queued and synced entries are left alone", func(t *testing.T) {
		delivered := stranded
		delivered.ID = "txn-1756400000001-000002"
		delivered.Synced = true
		bothJSON, err := json.Marshal([]models.Transaction{delivered, stranded})
		assert.NoError(t, err)
		queueJSON, err := json.Marshal([]models.Transaction{stranded})
		assert.NoError(t, err)

		// No Set expectation: a consistent store stays untouched.
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(keyCustomers).SetVal(string(customersJSON))
		mock.ExpectGet(keyTransactions).SetVal(string(bothJSON))
		mock.ExpectGet(keySyncQueue).SetVal(string(queueJSON))
		mock.ExpectGet(keyLastSync).RedisNil()

		ledger := NewLedgerService(NewStorageService(db), &fakeRemote{}, NewNotifier())
		ledger.Restore(ctx)

		assert.Equal(t, 1, ledger.QueueLength())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerService_TransactionIDsMonotonic(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	ledger := newTestLedger(remote)
	ledger.SetOnline(true)
	ledger.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	customer, _ := ledger.CreateCustomer(ctx, "Karim")

	a := record(t, ledger, customer.ID, 10, models.DrCrDebit)
	b := record(t, ledger, customer.ID, 20, models.DrCrDebit)

	// Same instant, still distinct and ordered ids.
	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)

	// Ordering survives the sequence growing a digit.
	ledger.txSeq = 9998
	c := record(t, ledger, customer.ID, 30, models.DrCrDebit)
	d := record(t, ledger, customer.ID, 40, models.DrCrDebit)
	assert.Less(t, c.ID, d.ID)
}
