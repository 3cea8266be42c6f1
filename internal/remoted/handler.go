package remoted

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/abbasons/ledger/internal/models"
)

// Handler serves the single-URL action API the device-side client speaks.
// Reads arrive as GET ?action=..., writes as POST {action, data}.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type actionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type actionAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	w.Header().Set("Content-Type", "application/json")

	switch action {
	case "getCustomers":
		customers, err := h.store.Customers(r.Context())
		if err != nil {
			log.Printf("[REMOTED] getCustomers failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(customers)

	case "getTransactions":
		transactions, err := h.store.Transactions(r.Context(), r.URL.Query().Get("customerId"))
		if err != nil {
			log.Printf("[REMOTED] getTransactions failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(transactions)

	case "getBalanceSheet":
		sheet, err := h.store.BalanceSheet(r.Context())
		if err != nil {
			log.Printf("[REMOTED] getBalanceSheet failed: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(sheet)

	case "":
		// Bare GET is the device-side reachability probe.
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})

	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeAck(w, http.StatusBadRequest, actionAck{Success: false, Message: "Invalid request body"})
		return
	}

	switch req.Action {
	case "submitTransaction":
		var tx models.Transaction
		if err := json.Unmarshal(req.Data, &tx); err != nil {
			h.writeAck(w, http.StatusBadRequest, actionAck{Success: false, Message: "Invalid transaction payload"})
			return
		}
		if err := h.store.SaveTransaction(r.Context(), tx); err != nil {
			log.Printf("[REMOTED] submitTransaction %s failed: %v", tx.ID, err)
			h.writeAck(w, http.StatusOK, actionAck{Success: false, Message: "Failed to save transaction"})
			return
		}
		h.writeAck(w, http.StatusCreated, actionAck{Success: true})

	case "batchSync":
		var txs []models.Transaction
		if err := json.Unmarshal(req.Data, &txs); err != nil {
			h.writeAck(w, http.StatusBadRequest, actionAck{Success: false, Message: "Invalid batch payload"})
			return
		}
		if err := h.store.SaveBatch(r.Context(), txs); err != nil {
			log.Printf("[REMOTED] batchSync of %d failed: %v", len(txs), err)
			h.writeAck(w, http.StatusOK, actionAck{Success: false, Message: "Failed to save batch"})
			return
		}
		log.Printf("[REMOTED] Batch of %d transactions saved", len(txs))
		h.writeAck(w, http.StatusCreated, actionAck{Success: true})

	default:
		h.writeAck(w, http.StatusBadRequest, actionAck{Success: false, Message: "Unknown action"})
	}
}

func (h *Handler) writeAck(w http.ResponseWriter, status int, ack actionAck) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ack)
}
