package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

// QRService produces balance-request codes a customer can scan to see their
// outstanding position. Codes are single-use and expire after five minutes.
type QRService struct {
	ledger *LedgerService
	redis  *redis.Client
}

func NewQRService(ledger *LedgerService, redisClient *redis.Client) *QRService {
	return &QRService{
		ledger: ledger,
		redis:  redisClient,
	}
}

func (s *QRService) GenerateBalanceCode(ctx context.Context, customerID string) (string, string, error) {
	customer, ok := s.ledger.Customer(customerID)
	if !ok {
		return "", "", ErrCustomerNotFound
	}

	qrData := map[string]any{
		"customerId": customer.ID,
		"balance":    customer.Balance,
		"drCr":       customer.DrCr,
		"timestamp":  time.Now().Unix(),
		"nonce":      s.generateNonce(),
	}

	jsonData, err := json.Marshal(qrData)
	if err != nil {
		return "", "", err
	}

	code := base64.URLEncoding.EncodeToString(jsonData)

	if s.redis != nil {
		key := fmt.Sprintf("qr:%s", code)
		if err := s.redis.Set(ctx, key, jsonData, 5*time.Minute).Err(); err != nil {
			return "", "", err
		}
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	return code, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *QRService) ResolveBalanceCode(ctx context.Context, code string) (map[string]any, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("QR codes unavailable without the local store")
	}

	key := fmt.Sprintf("qr:%s", code)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired QR code")
	}
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	s.redis.Del(ctx, key)

	return result, nil
}

// GetCustomerQR serves a balance-request code
// @Summary Balance-request QR code
// @Description Single-use code embedding the customer's current balance, valid for five minutes
// @Tags customers
// @Produce json
// @Param customerId path string true "Customer ID"
// @Success 200 {object} object{qrCode=string,qrImage=string}
// @Failure 404 {object} ErrorResponse
// @Router /customers/{customerId}/qr [get]
func (s *QRService) GetCustomerQR(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	code, image, err := s.GenerateBalanceCode(r.Context(), customerID)
	if err != nil {
		if err == ErrCustomerNotFound {
			SendErrorResponse(w, "Customer not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"qrCode":  code,
		"qrImage": image,
	})
}

func (s *QRService) generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
