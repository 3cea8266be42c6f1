package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/abbasons/ledger/internal/models"
)

// ErrDeliveryFailed is the uniform outcome for any transport error or
// non-success response from the remote ledger. Callers retain data locally
// and retry later; they never need to distinguish failure causes.
var ErrDeliveryFailed = errors.New("remote delivery failed")

// RemoteLedger is the request/response contract of the remote ledger
// backend. The core depends on this contract only, not on who serves it.
type RemoteLedger interface {
	FetchCustomers(ctx context.Context) ([]models.Customer, error)
	FetchTransactions(ctx context.Context, customerID string) ([]models.Transaction, error)
	FetchBalanceSheet(ctx context.Context) (*models.BalanceSheet, error)
	SubmitTransaction(ctx context.Context, tx models.Transaction) error
	BatchSync(ctx context.Context, txs []models.Transaction) error
	Ping(ctx context.Context) bool
}

// RemoteLedgerClient talks to a remote ledger webapp over its single-URL
// action API: reads are GET ?action=..., writes are POST {action, data}.
type RemoteLedgerClient struct {
	baseURL string
	client  *http.Client
}

type actionRequest struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

type actionAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func NewRemoteLedgerClient(baseURL string, timeout time.Duration) *RemoteLedgerClient {
	return &RemoteLedgerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *RemoteLedgerClient) FetchCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	params := url.Values{"action": {"getCustomers"}}
	if err := c.get(ctx, params, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *RemoteLedgerClient) FetchTransactions(ctx context.Context, customerID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	params := url.Values{"action": {"getTransactions"}, "customerId": {customerID}}
	if err := c.get(ctx, params, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (c *RemoteLedgerClient) FetchBalanceSheet(ctx context.Context) (*models.BalanceSheet, error) {
	var sheet models.BalanceSheet
	params := url.Values{"action": {"getBalanceSheet"}}
	if err := c.get(ctx, params, &sheet); err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (c *RemoteLedgerClient) SubmitTransaction(ctx context.Context, tx models.Transaction) error {
	return c.post(ctx, actionRequest{Action: "submitTransaction", Data: tx})
}

func (c *RemoteLedgerClient) BatchSync(ctx context.Context, txs []models.Transaction) error {
	return c.post(ctx, actionRequest{Action: "batchSync", Data: txs})
}

// Ping reports transport-level reachability of the remote ledger. Any HTTP
// response counts as reachable; only a failed round trip does not.
func (c *RemoteLedgerClient) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

func (c *RemoteLedgerClient) get(ctx context.Context, params url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[REMOTE] GET %s failed: %v", params.Get("action"), err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[REMOTE] GET %s returned status %d", params.Get("action"), resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		log.Printf("[REMOTE] GET %s returned malformed body: %v", params.Get("action"), err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

func (c *RemoteLedgerClient) post(ctx context.Context, body actionRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("[REMOTE] POST %s failed: %v", body.Action, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[REMOTE] POST %s returned status %d", body.Action, resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	var ack actionAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		log.Printf("[REMOTE] POST %s returned malformed ack: %v", body.Action, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	if !ack.Success {
		log.Printf("[REMOTE] POST %s rejected: %s", body.Action, ack.Message)
		return fmt.Errorf("%w: %s", ErrDeliveryFailed, ack.Message)
	}
	return nil
}
