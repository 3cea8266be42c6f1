package services

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// TransactionService is the HTTP surface the UI calls. It holds no state of
// its own: every operation delegates to the ledger service.
type TransactionService struct {
	ledger    *LedgerService
	storage   *StorageService
	notifier  *Notifier
	validator *ValidationHelper
}

func NewTransactionService(ledger *LedgerService, storage *StorageService, notifier *Notifier) *TransactionService {
	return &TransactionService{
		ledger:    ledger,
		storage:   storage,
		notifier:  notifier,
		validator: NewValidationHelper(),
	}
}

// CreateCustomerRequest is the payload for adding a customer.
type CreateCustomerRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// CalculateAmountRequest asks the engine to derive an amount so the UI can
// show the same number the record operation would.
type CalculateAmountRequest struct {
	Weight string `json:"weight"`
	Rate   string `json:"rate"`
	Item   string `json:"item"`
}

// CreateTransaction records a new ledger entry
// @Summary Record a transaction
// @Description Record a ledger entry; balance is applied locally regardless of connectivity, delivery to the remote ledger is queued if it cannot complete
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body RecordTransactionRequest true "Transaction data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions [post]
func (ts *TransactionService) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx, err := ts.ledger.RecordTransaction(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCustomerNotFound):
			SendErrorResponse(w, "Customer not found", http.StatusNotFound, nil)
		case errors.Is(err, ErrValidation):
			SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		default:
			log.Printf("[TRANSACTION] Record failed: %v", err)
			SendErrorResponse(w, "Failed to record transaction", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success":     true,
		"transaction": tx,
		"queued":      !tx.Synced,
	})
}

// GetRecentTransactions lists recent entries
// @Summary Recent transactions
// @Description Most recent ledger entries across all customers
// @Tags transactions
// @Produce json
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {array} models.Transaction
// @Router /transactions/recent [get]
func (ts *TransactionService) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts.ledger.RecentTransactions(limit))
}

// ListCustomers lists customers with optional search and filter
// @Summary List customers
// @Description List customers, optionally filtered by a name search and a dr/cr/nill status filter
// @Tags customers
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param filter query string false "all | dr | cr | nill"
// @Success 200 {object} object{customers=[]models.Customer,count=int}
// @Router /customers [get]
func (ts *TransactionService) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers := ts.ledger.Customers(r.URL.Query().Get("search"), r.URL.Query().Get("filter"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// CreateCustomer adds a customer
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body CreateCustomerRequest true "Customer data"
// @Success 201 {object} models.Customer
// @Failure 400 {object} ErrorResponse
// @Router /customers [post]
func (ts *TransactionService) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	customer, err := ts.ledger.CreateCustomer(r.Context(), req.Name)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(customer)
}

// GetCustomerTransactions lists one customer's history
// @Summary Customer transactions
// @Tags customers
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} object{customer=models.Customer,transactions=[]models.Transaction}
// @Failure 404 {object} ErrorResponse
// @Router /customers/{customerId}/transactions [get]
func (ts *TransactionService) GetCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	customer, ok := ts.ledger.Customer(customerID)
	if !ok {
		SendErrorResponse(w, "Customer not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customer":     customer,
		"transactions": ts.ledger.CustomerTransactions(customerID),
	})
}

// CalculateAmountHandler derives an amount from weight, rate and item
// @Summary Derive a transaction amount
// @Description Same derivation the record operation uses, so the UI can preview amounts as weight/rate/item change
// @Tags transactions
// @Accept json
// @Produce json
// @Param input body CalculateAmountRequest true "Pricing inputs"
// @Success 200 {object} object{amount=number}
// @Router /calc/amount [post]
func (ts *TransactionService) CalculateAmountHandler(w http.ResponseWriter, r *http.Request) {
	var req CalculateAmountRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"amount": CalculateAmount(req.Weight, req.Rate, req.Item),
	})
}

// GetBalanceSheet returns the aggregate position
// @Summary Balance sheet
// @Description Aggregate DR/CR totals and per-customer balances, computed on demand
// @Tags balance
// @Produce json
// @Success 200 {object} models.BalanceSheet
// @Router /balance-sheet [get]
func (ts *TransactionService) GetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts.ledger.BalanceSheet())
}

// GetSyncStatus reports the queue state
// @Summary Sync status
// @Description Reachability, queued transaction count and last successful sync instant
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncStatus
// @Router /sync/status [get]
func (ts *TransactionService) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := ts.ledger.Status()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"online":      status.Online,
		"queueLength": status.QueueLength,
		"lastSync":    status.LastSync,
		"storageSize": ts.storage.StorageSize(r.Context()),
	})
}

// TriggerFlush manually drains the sync queue
// @Summary Flush the sync queue
// @Description Send every queued transaction to the remote ledger now; offline, or with a flush already in flight, this is a no-op
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncStatus
// @Failure 502 {object} ErrorResponse
// @Router /sync/flush [post]
func (ts *TransactionService) TriggerFlush(w http.ResponseWriter, r *http.Request) {
	// Flushing while unreachable would only burn the remote timeout; the
	// queue drains on the next reconnect edge anyway.
	if status := ts.ledger.Status(); !status.Online {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
		return
	}

	if err := ts.ledger.Flush(r.Context()); err != nil {
		SendErrorResponse(w, "Sync failed, queued transactions retained", http.StatusBadGateway, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts.ledger.Status())
}

// RefreshCustomers pulls the customer list from the remote ledger
// @Summary Refresh customers from remote
// @Tags sync
// @Produce json
// @Success 200 {object} object{customers=[]models.Customer,count=int}
// @Failure 502 {object} ErrorResponse
// @Router /sync/refresh [post]
func (ts *TransactionService) RefreshCustomers(w http.ResponseWriter, r *http.Request) {
	if err := ts.ledger.RefreshCustomers(r.Context()); err != nil {
		SendErrorResponse(w, "Remote ledger unavailable, using local data", http.StatusBadGateway, nil)
		return
	}

	customers := ts.ledger.Customers("", "")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"customers": customers,
		"count":     len(customers),
	})
}

// GetNotifications lists recent user-facing occasions
// @Summary Recent notifications
// @Tags sync
// @Produce json
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (ts *TransactionService) GetNotifications(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ts.notifier.Recent())
}

// ResetData wipes the working set
// @Summary Full data reset
// @Description Destroys every customer, transaction and queued entry, locally and in the on-device store
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]string
// @Router /reset [post]
func (ts *TransactionService) ResetData(w http.ResponseWriter, r *http.Request) {
	ts.ledger.Reset(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}
