package middleware

import (
	"banking-api/internal/pkg/token"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	issuer, err := token.NewIssuer("testsecret", time.Hour)
	require.NoError(t, err)
	auth := AuthMiddleware(issuer, logger)

	var seenCustomer int64
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCustomer, _ = CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects request with missing Authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		auth(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "No token, authorization denied", body["error"]["message"])
	})

	t.Run("rejects non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		auth(nextHandler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects request with invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer invalidtoken")
		rec := httptest.NewRecorder()

		auth(nextHandler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other, err := token.NewIssuer("othersecret", time.Hour)
		require.NoError(t, err)
		signed, _, err := other.Issue(7, "ada@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()

		auth(nextHandler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("passes the customer to the next handler", func(t *testing.T) {
		signed, _, err := issuer.Issue(7, "ada@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+signed)
		rec := httptest.NewRecorder()

		auth(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), seenCustomer)
	})
}

func TestCustomerIDFromContext(t *testing.T) {
	_, ok := CustomerIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &token.Claims{CustomerID: 3})
	id, ok := CustomerIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)
}
