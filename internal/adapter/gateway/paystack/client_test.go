package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-backend/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.PaystackConfig{
		SecretKey:   "sk_test_secret",
		BaseURL:     srv.URL,
		CallbackURL: "https://app.example.com/callback",
		Timeout:     5 * time.Second,
	}, nil, zerolog.Nop())
	return client, srv
}

func TestClient_InitializeTransaction_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.Equal(t, float64(50000), body["amount"])
		assert.Equal(t, "DEP-abc", body["reference"])
		assert.Equal(t, "https://app.example.com/callback", body["callback_url"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "DEP-abc"
			}
		}`))
	})

	session, err := client.InitializeTransaction(context.Background(), "ada@example.com", 50000, "DEP-abc")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc123", session.AuthorizationURL)
	assert.Equal(t, "abc123", session.AccessCode)
	assert.Equal(t, "DEP-abc", session.Reference)
}

func TestClient_InitializeTransaction_Declined(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
	})

	session, err := client.InitializeTransaction(context.Background(), "ada@example.com", 50000, "DEP-abc")
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestClient_InitializeTransaction_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	session, err := client.InitializeTransaction(context.Background(), "ada@example.com", 50000, "DEP-abc")
	assert.Nil(t, session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_VerifyTransaction(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/DEP-abc", r.URL.Path)

		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"status": "success", "amount": 50000}
		}`))
	})

	result, err := client.VerifyTransaction(context.Background(), "DEP-abc")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, int64(50000), result.Amount)
}

func TestClient_VerifySignature(t *testing.T) {
	client := NewClient(config.PaystackConfig{SecretKey: "sk_test_secret"}, nil, zerolog.Nop())

	payload := []byte(`{"event":"charge.success","data":{"reference":"DEP-abc","amount":50000}}`)
	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifySignature(payload, signature))
	assert.False(t, client.VerifySignature(payload, "deadbeef"))
	assert.False(t, client.VerifySignature([]byte(`tampered`), signature))

	// A re-serialized body with different whitespace must not verify: the hash
	// is over the exact raw bytes.
	reserialized := []byte(`{"event": "charge.success", "data": {"reference": "DEP-abc", "amount": 50000}}`)
	assert.False(t, client.VerifySignature(reserialized, signature))
}

func TestClient_VerifySignature_WrongKey(t *testing.T) {
	client := NewClient(config.PaystackConfig{SecretKey: "sk_test_secret"}, nil, zerolog.Nop())

	payload := []byte(`{"event":"charge.success"}`)
	mac := hmac.New(sha512.New, []byte("some-other-key"))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.False(t, client.VerifySignature(payload, signature))
}
