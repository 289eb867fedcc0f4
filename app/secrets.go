package app

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/courier/db"
	"golang.org/x/crypto/bcrypt"
)

// GenerateWebhookSecret returns 32 bytes from crypto/rand as lowercase hex.
func GenerateWebhookSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SignPayload returns the lowercase-hex HMAC-SHA256 of body under secret.
// This is the value carried in the X-Webhook-Signature header.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches body under secret.
// The comparison is constant-time.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}

// HashToken returns a bcrypt hash with cost 10 for an admin API token.
func HashToken(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 10)
	if err != nil {
		return "", fmt.Errorf("hashing token: %w", err)
	}
	return string(hash), nil
}

// ValidateTokenByID fetches an API token by UUID and validates the plaintext
// against its stored hash. Returns the full ApiToken record or an error.
func ValidateTokenByID(ctx context.Context, queries db.Querier, tokenID uuid.UUID, plaintext string) (db.ApiToken, error) {
	token, err := queries.GetApiToken(ctx, pgtype.UUID{Bytes: tokenID, Valid: true})
	if err != nil {
		return db.ApiToken{}, fmt.Errorf("token not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(plaintext)) != nil {
		return db.ApiToken{}, fmt.Errorf("invalid token")
	}
	return token, nil
}
