package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/sweater-ventures/courier/app"
	"github.com/sweater-ventures/courier/db"
	"github.com/sweater-ventures/courier/testutil"
)

func authTestHandler(courier *app.Application, tenantOut *string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*tenantOut = TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return BearerAuthMiddleware(courier)(next)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	courier := testutil.NewTestApp(mockDB)

	token := testutil.NewApiToken("sekret")
	mockDB.On("GetApiToken", mock.Anything, token.ID).Return(token, nil)

	var tenant string
	handler := authTestHandler(courier, &tenant)

	req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
	testutil.WithBearerToken(req, app.UuidToString(token.ID), "sekret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant-a", tenant)
}

func TestBearerAuth_CachesTokenRow(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	courier := testutil.NewTestApp(mockDB)

	token := testutil.NewApiToken("sekret")
	mockDB.On("GetApiToken", mock.Anything, token.ID).Return(token, nil).Once()

	var tenant string
	handler := authTestHandler(courier, &tenant)

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
		testutil.WithBearerToken(req, app.UuidToString(token.ID), "sekret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	mockDB.AssertExpectations(t)
}

func TestBearerAuth_NegativeLookupCached(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	courier := testutil.NewTestApp(mockDB)

	id := testutil.NewUUID()
	mockDB.On("GetApiToken", mock.Anything, id).Return(db.ApiToken{}, pgx.ErrNoRows).Once()

	var tenant string
	handler := authTestHandler(courier, &tenant)

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
		testutil.WithBearerToken(req, app.UuidToString(id), "whatever")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	mockDB.AssertExpectations(t)
}

func TestBearerAuth_RejectsMalformedHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"no separator", "Bearer justonepart"},
		{"empty secret", "Bearer 0198c7a2-0000-7000-8000-000000000000."},
		{"bad uuid", "Bearer not-a-uuid.secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(testutil.MockQuerier)
			courier := testutil.NewTestApp(mockDB)

			var tenant string
			handler := authTestHandler(courier, &tenant)

			req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			mockDB.AssertNotCalled(t, "GetApiToken", mock.Anything, mock.Anything)
		})
	}
}

func TestBearerAuth_WrongSecretRejected(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	courier := testutil.NewTestApp(mockDB)

	token := testutil.NewApiToken("right")
	mockDB.On("GetApiToken", mock.Anything, token.ID).Return(token, nil)

	var tenant string
	handler := authTestHandler(courier, &tenant)

	req := httptest.NewRequest(http.MethodGet, "/webhooks", nil)
	testutil.WithBearerToken(req, app.UuidToString(token.ID), "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_VersionExempt(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	courier := testutil.NewTestApp(mockDB)

	var tenant string
	handler := authTestHandler(courier, &tenant)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, tenant)
}
