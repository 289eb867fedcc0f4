package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sweater-ventures/courier/db"
)

func TestGenerateWebhookSecret(t *testing.T) {
	a, err := GenerateWebhookSecret()
	require.NoError(t, err)
	b, err := GenerateWebhookSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
	assert.NotEqual(t, a, b)
}

func TestSignAndVerifyPayload(t *testing.T) {
	secret := "0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f0f"
	body := []byte(`{"event_type":"sms.delivered"}`)

	signature := SignPayload(secret, body)
	assert.Regexp(t, "^[0-9a-f]{64}$", signature)
	assert.True(t, VerifySignature(secret, body, signature))
}

func TestVerifySignature_Rejects(t *testing.T) {
	secret := "secret-a"
	body := []byte(`{"event_type":"sms.delivered"}`)
	signature := SignPayload(secret, body)

	assert.False(t, VerifySignature(secret, []byte(`{"event_type":"sms.failed"}`), signature), "tampered body")
	assert.False(t, VerifySignature("secret-b", body, signature), "wrong secret")
	assert.False(t, VerifySignature(secret, body, "not-hex"), "malformed signature")
	assert.False(t, VerifySignature(secret, body, ""), "empty signature")
}

func TestSignPayload_Deterministic(t *testing.T) {
	body := []byte(`{"x":1}`)
	assert.Equal(t, SignPayload("s", body), SignPayload("s", body))
	assert.NotEqual(t, SignPayload("s1", body), SignPayload("s2", body))
}

func TestValidateTokenByID(t *testing.T) {
	hash, err := HashToken("correct-horse")
	require.NoError(t, err)

	tokenID := uuid.Must(uuid.NewV7())
	token := db.ApiToken{
		ID:        pgtype.UUID{Bytes: tokenID, Valid: true},
		TenantID:  "tenant-a",
		Name:      "ci",
		TokenHash: hash,
	}

	t.Run("valid token", func(t *testing.T) {
		mockDB := new(appMockQuerier)
		mockDB.On("GetApiToken", mock.Anything, token.ID).Return(token, nil)

		got, err := ValidateTokenByID(context.Background(), mockDB, tokenID, "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, "tenant-a", got.TenantID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		mockDB := new(appMockQuerier)
		mockDB.On("GetApiToken", mock.Anything, token.ID).Return(token, nil)

		_, err := ValidateTokenByID(context.Background(), mockDB, tokenID, "battery-staple")
		assert.Error(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		mockDB := new(appMockQuerier)
		mockDB.On("GetApiToken", mock.Anything, mock.Anything).Return(db.ApiToken{}, pgx.ErrNoRows)

		_, err := ValidateTokenByID(context.Background(), mockDB, uuid.Must(uuid.NewV7()), "whatever")
		assert.Error(t, err)
	})
}
