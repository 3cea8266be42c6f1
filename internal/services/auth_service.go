package services

import (
	cryptorand "crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

const pinHashKey = "device_pin_hash"

// AuthService guards the device with a single operator PIN. The ledger is a
// one-operator tool, so there is no user table: setup stores one argon2 hash
// in the local store and login exchanges the PIN for a JWT.
type AuthService struct {
	redis     *redis.Client
	validator *validator.Validate
}

// SetupRequest sets the operator PIN on first run
// @Description PIN setup request structure
type SetupRequest struct {
	Pin string `json:"pin" validate:"required,min=4,max=12" example:"4271"` // Operator PIN
}

// LoginRequest exchanges the operator PIN for a token
// @Description PIN login request structure
type LoginRequest struct {
	Pin string `json:"pin" validate:"required" example:"4271"` // Operator PIN
}

// AuthResponse carries the session token
// @Description Authentication response structure
type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
}

func NewAuthService(redisClient *redis.Client) *AuthService {
	return &AuthService{
		redis:     redisClient,
		validator: validator.New(),
	}
}

// Setup stores the operator PIN
// @Summary Set the operator PIN
// @Description Store the device PIN; allowed only while no PIN is set
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SetupRequest true "PIN setup request"
// @Success 201 {object} AuthResponse "PIN set"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "PIN already set"
// @Router /auth/setup [post]
func (s *AuthService) Setup(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] PIN setup attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req SetupRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if s.redis == nil {
		SendErrorResponse(w, "Local store unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	existing, err := s.redis.Get(r.Context(), pinHashKey).Result()
	if err == nil && existing != "" {
		log.Printf("[AUTH] Setup rejected, PIN already present")
		SendErrorResponse(w, "PIN already set", http.StatusConflict, nil)
		return
	}

	hash, err := hashPin(req.Pin)
	if err != nil {
		log.Printf("[AUTH] PIN hashing failed: %v", err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	if err := s.redis.Set(r.Context(), pinHashKey, hash, 0).Err(); err != nil {
		log.Printf("[AUTH] Failed to persist PIN hash: %v", err)
		SendErrorResponse(w, "Failed to store PIN", http.StatusInternalServerError, nil)
		return
	}

	token, err := generateJWT()
	if err != nil {
		log.Printf("[AUTH] JWT generation failed: %v", err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Operator PIN set")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{Token: token})
}

// Login authenticates the operator
// @Summary Login with the operator PIN
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req LoginRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if s.redis == nil {
		SendErrorResponse(w, "Local store unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	hash, err := s.redis.Get(r.Context(), pinHashKey).Result()
	if err != nil || hash == "" {
		log.Printf("[AUTH] Login before setup")
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if !verifyPin(req.Pin, hash) {
		log.Printf("[AUTH] Invalid PIN")
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT()
	if err != nil {
		log.Printf("[AUTH] JWT generation failed: %v", err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: token})
}

func generateJWT() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func hashPin(pin string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(pin), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPin(pin, hashedPin string) bool {
	parts := strings.Split(hashedPin, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(pin), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return string(hash) == string(computedHash)
}
