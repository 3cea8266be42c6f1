package services

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abbasons/ledger/internal/models"
)

func TestValidationHelper_RecordTransactionRequest(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid request", func(t *testing.T) {
		amount := 500.0
		req := RecordTransactionRequest{
			CustomerID:  "cust-1",
			Description: "goods",
			DrCr:        models.DrCrDebit,
			Amount:      &amount,
		}
		assert.NoError(t, vh.ValidateStruct(&req))
	})

	t.Run("valid without amount, derived later", func(t *testing.T) {
		req := RecordTransactionRequest{
			CustomerID:  "cust-1",
			Description: "goods",
			Weight:      "10",
			Rate:        "50",
			DrCr:        models.DrCrCredit,
		}
		assert.NoError(t, vh.ValidateStruct(&req))
	})

	t.Run("missing required fields", func(t *testing.T) {
		assert.Error(t, vh.ValidateStruct(&RecordTransactionRequest{DrCr: models.DrCrDebit}))
	})

	t.Run("bad drCr value", func(t *testing.T) {
		amount := 10.0
		req := RecordTransactionRequest{
			CustomerID:  "cust-1",
			Description: "goods",
			DrCr:        "Both",
			Amount:      &amount,
		}
		assert.Error(t, vh.ValidateStruct(&req))
	})

	t.Run("zero amount override rejected", func(t *testing.T) {
		amount := 0.0
		req := RecordTransactionRequest{
			CustomerID:  "cust-1",
			Description: "goods",
			DrCr:        models.DrCrDebit,
			Amount:      &amount,
		}
		assert.Error(t, vh.ValidateStruct(&req))
	})
}

func TestSendErrorResponse(t *testing.T) {
	vh := NewValidationHelper()

	w := httptest.NewRecorder()
	err := vh.ValidateStruct(&RecordTransactionRequest{})
	SendErrorResponse(w, "Validation failed", 400, err)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "CustomerID")
	assert.Contains(t, resp.Details, "Description")
}
