package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wallet-backend/config"
	"wallet-backend/internal/adapter/gateway/paystack"
	httpHandler "wallet-backend/internal/adapter/http/handler"
	redisStorage "wallet-backend/internal/adapter/storage/redis"
	"wallet-backend/internal/core/domain"
	"wallet-backend/internal/core/ports"
	"wallet-backend/internal/service"
	"wallet-backend/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack: real HTTP layer, middleware,
// handlers, services, the real Paystack client pointed at a stub provider, and
// Redis stores backed by miniredis. Only the postgres repos are swapped for
// in-memory implementations.

const (
	testPaystackSecret = "sk_test_integration_secret"
	testMinDeposit     = int64(10000) // Minor units
)

type testApp struct {
	server   *httptest.Server
	provider *httptest.Server
	redis    *miniredis.Miniredis

	users   *inMemoryUserRepo
	wallets *inMemoryWalletRepo
	txns    *inMemoryTransactionRepo
	audits  *inMemoryAuditRepo
}

// stubVerifier resolves a fixed set of test ID tokens to Google profiles.
type stubVerifier struct {
	profiles map[string]ports.GoogleProfile
}

func (v *stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*ports.GoogleProfile, error) {
	p, ok := v.profiles[idToken]
	if !ok {
		return nil, fmt.Errorf("unrecognized id token")
	}
	return &p, nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Stub Paystack API.
	providerMux := http.NewServeMux()
	providerMux.HandleFunc("/transaction/initialize", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reference string `json:"reference"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.test/%s","access_code":"ac_%s","reference":%q}}`,
			req.Reference, req.Reference, req.Reference)
	})
	providerMux.HandleFunc("/transaction/verify/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"status":"success","amount":0}}`)
	})
	provider := httptest.NewServer(providerMux)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logger.New("error", false)

	dedupCache := redisStorage.NewDedupStore(rdb)

	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	keyRepo := newInMemoryAPIKeyRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newMemTransactor()

	tokenSvc := service.NewJWTTokenService("integration-test-jwt-secret", 24*time.Hour, "wallet-backend")
	hashSvc := service.NewArgon2HashService()

	gateway := paystack.NewClient(config.PaystackConfig{
		SecretKey:   testPaystackSecret,
		BaseURL:     provider.URL,
		CallbackURL: "https://app.test/deposit/callback",
		Timeout:     5 * time.Second,
	}, nil, log)

	authSvc := service.NewAuthService(userRepo, walletRepo, tokenSvc, log)
	walletSvc := service.NewWalletService(walletRepo, txRepo, userRepo, gateway, dedupCache, transactor, testMinDeposit, log)
	apiKeySvc := service.NewAPIKeyService(keyRepo, hashSvc, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	verifier := &stubVerifier{profiles: map[string]ports.GoogleProfile{
		"id-token-alice": {GoogleID: "google-alice", Email: "alice@example.com", Name: "Alice Wonderland"},
		"id-token-bob":   {GoogleID: "google-bob", Email: "bob@example.com", Name: "Bob Marley"},
		"id-token-carol": {GoogleID: "google-carol", Email: "carol@example.com", Name: "Carol Danvers"},
	}}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:   authSvc,
		WalletSvc: walletSvc,
		APIKeySvc: apiKeySvc,
		TokenSvc:  tokenSvc,
		Verifier:  verifier,
		Gateway:   gateway,
		AuditSvc:  auditSvc,
		Logger:    log,
	})

	server := httptest.NewServer(router)

	return &testApp{
		server:   server,
		provider: provider,
		redis:    mr,
		users:    userRepo,
		wallets:  walletRepo,
		txns:     txRepo,
		audits:   auditRepo,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.provider.Close()
}

// --- Helpers ---

func login(t *testing.T, app *testApp, idToken string) (token string, userID uuid.UUID) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"id_token": idToken})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/google", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Data.Token)

	id, err := uuid.Parse(out.Data.User.ID)
	require.NoError(t, err)
	return out.Data.Token, id
}

func walletNumberOf(t *testing.T, app *testApp, userID uuid.UUID) string {
	t.Helper()
	w, err := app.wallets.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, w)
	return w.WalletNumber
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testPaystackSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func deliverWebhook(t *testing.T, app *testApp, event, reference string, amount int64, outcome string) *http.Response {
	t.Helper()
	body := []byte(fmt.Sprintf(`{"event":%q,"data":{"reference":%q,"amount":%d,"status":%q}}`,
		event, reference, amount, outcome))
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signWebhook(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func authedJSON(t *testing.T, app *testApp, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, app.server.URL+path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.ErrorCode
}

func getBalance(t *testing.T, app *testApp, token string) int64 {
	t.Helper()
	resp := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/balance", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	return int64(data["balance"].(float64))
}

// fundWallet runs the deposit flow end to end: initialize, then deliver the
// provider's success webhook.
func fundWallet(t *testing.T, app *testApp, token string, amount int64) string {
	t.Helper()
	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": amount})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	reference := data["reference"].(string)

	whResp := deliverWebhook(t, app, "charge.success", reference, amount, "success")
	whResp.Body.Close()
	require.Equal(t, http.StatusOK, whResp.StatusCode)
	return reference
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_GoogleLogin_OnboardsOnce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, userID := login(t, app, "id-token-alice")
	require.NotEmpty(t, token)

	number := walletNumberOf(t, app, userID)
	assert.Len(t, number, domain.WalletNumberLength)
	assert.Equal(t, int64(0), getBalance(t, app, token))

	// Second login resolves to the same user and wallet.
	token2, userID2 := login(t, app, "id-token-alice")
	assert.Equal(t, userID, userID2)
	assert.Equal(t, number, walletNumberOf(t, app, userID2))
	assert.Equal(t, int64(0), getBalance(t, app, token2))
}

func TestIntegration_GoogleLogin_UnknownToken(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	body, _ := json.Marshal(map[string]string{"id_token": "forged-token"})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/google", "application/json", bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "AUTH_001", errorCode(t, resp))
}

func TestIntegration_DepositLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	// Initialize.
	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": 50000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	reference := data["reference"].(string)
	assert.True(t, strings.HasPrefix(reference, "DEP-"))
	assert.Contains(t, data["authorization_url"], reference)

	// Nothing credited until the provider confirms.
	assert.Equal(t, int64(0), getBalance(t, app, token))

	statusResp := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/deposit/"+reference+"/status", token, nil)
	require.Equal(t, http.StatusOK, statusResp.StatusCode)
	assert.Equal(t, "pending", decodeData(t, statusResp)["status"])

	// Provider confirms.
	whResp := deliverWebhook(t, app, "charge.success", reference, 50000, "success")
	whResp.Body.Close()
	require.Equal(t, http.StatusOK, whResp.StatusCode)

	assert.Equal(t, int64(50000), getBalance(t, app, token))

	statusResp2 := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/deposit/"+reference+"/status", token, nil)
	assert.Equal(t, "success", decodeData(t, statusResp2)["status"])

	// Redelivery must not double-credit.
	whResp2 := deliverWebhook(t, app, "charge.success", reference, 50000, "success")
	whResp2.Body.Close()
	require.Equal(t, http.StatusOK, whResp2.StatusCode)
	assert.Equal(t, int64(50000), getBalance(t, app, token))
}

func TestIntegration_Deposit_BelowMinimum(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": testMinDeposit - 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "WAL_001", errorCode(t, resp))
}

func TestIntegration_Webhook_InvalidSignature(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	body := []byte(`{"event":"charge.success","data":{"reference":"DEP-x","amount":1000,"status":"success"}}`)
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/wallet/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "GW_002", errorCode(t, resp))
}

func TestIntegration_Webhook_UnknownReferenceRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := deliverWebhook(t, app, "charge.success", "DEP-never-issued", 1000, "success")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "WAL_004", errorCode(t, resp))
}

func TestIntegration_Webhook_AmountMismatch(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": 50000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reference := decodeData(t, resp)["reference"].(string)

	whResp := deliverWebhook(t, app, "charge.success", reference, 49999, "success")
	assert.Equal(t, http.StatusUnprocessableEntity, whResp.StatusCode)
	assert.Equal(t, "WAL_006", errorCode(t, whResp))

	// Row stays pending, nothing credited.
	assert.Equal(t, int64(0), getBalance(t, app, token))
	statusResp := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/deposit/"+reference+"/status", token, nil)
	assert.Equal(t, "pending", decodeData(t, statusResp)["status"])
}

func TestIntegration_Webhook_FailedCharge(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": 50000})
	reference := decodeData(t, resp)["reference"].(string)

	whResp := deliverWebhook(t, app, "charge.failed", reference, 50000, "failed")
	whResp.Body.Close()
	require.Equal(t, http.StatusOK, whResp.StatusCode)

	assert.Equal(t, int64(0), getBalance(t, app, token))
	statusResp := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/deposit/"+reference+"/status", token, nil)
	assert.Equal(t, "failed", decodeData(t, statusResp)["status"])
}

func TestIntegration_Transfer_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	bobToken, bobID := login(t, app, "id-token-bob")
	bobNumber := walletNumberOf(t, app, bobID)

	fundWallet(t, app, aliceToken, 100000)

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
		"recipient_wallet_number": bobNumber,
		"amount":                  30000,
		"idempotency_key":         "order-77",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, "TRF-order-77", data["reference"])

	assert.Equal(t, int64(70000), getBalance(t, app, aliceToken))
	assert.Equal(t, int64(30000), getBalance(t, app, bobToken))

	// Replaying the same idempotency key returns the original result without
	// moving funds again.
	replay := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
		"recipient_wallet_number": bobNumber,
		"amount":                  30000,
		"idempotency_key":         "order-77",
	})
	require.Equal(t, http.StatusOK, replay.StatusCode)
	assert.Equal(t, "TRF-order-77", decodeData(t, replay)["reference"])
	assert.Equal(t, int64(70000), getBalance(t, app, aliceToken))
	assert.Equal(t, int64(30000), getBalance(t, app, bobToken))

	// Both legs appear in the journals.
	aliceTxns := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/transactions", aliceToken, nil)
	aliceData := decodeData(t, aliceTxns)
	assert.Equal(t, float64(2), aliceData["total"]) // deposit + transfer_out
	items := aliceData["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "transfer_out", first["type"])
	assert.Equal(t, bobNumber, first["recipient_wallet_number"])

	bobTxns := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/transactions", bobToken, nil)
	bobData := decodeData(t, bobTxns)
	assert.Equal(t, float64(1), bobData["total"])
	bobFirst := bobData["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "transfer_in", bobFirst["type"])
}

func TestIntegration_Transfer_Failures(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, aliceID := login(t, app, "id-token-alice")
	_, bobID := login(t, app, "id-token-bob")
	aliceNumber := walletNumberOf(t, app, aliceID)
	bobNumber := walletNumberOf(t, app, bobID)

	fundWallet(t, app, aliceToken, 20000)

	t.Run("self transfer", func(t *testing.T) {
		resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
			"recipient_wallet_number": aliceNumber,
			"amount":                  1000,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "WAL_003", errorCode(t, resp))
	})

	t.Run("unknown recipient", func(t *testing.T) {
		resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
			"recipient_wallet_number": "9999999999999",
			"amount":                  1000,
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "WAL_004", errorCode(t, resp))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
			"recipient_wallet_number": bobNumber,
			"amount":                  999999,
		})
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		assert.Equal(t, "WAL_002", errorCode(t, resp))
	})

	t.Run("malformed wallet number rejected by validation", func(t *testing.T) {
		resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
			"recipient_wallet_number": "123",
			"amount":                  1000,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	// No failed attempt moved any funds.
	assert.Equal(t, int64(20000), getBalance(t, app, aliceToken))
}

func TestIntegration_WalletLookup_MasksOwnerName(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	_, bobID := login(t, app, "id-token-bob")
	bobNumber := walletNumberOf(t, app, bobID)

	resp := authedJSON(t, app, http.MethodGet, "/api/v1/wallet/"+bobNumber+"/lookup", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, bobNumber, data["wallet_number"])
	assert.Equal(t, "Bob M.", data["owner_name"])
}

func TestIntegration_APIKeyLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	// Issue a read-only key.
	createResp := authedJSON(t, app, http.MethodPost, "/api/v1/keys", token, map[string]any{
		"name":        "reporting",
		"permissions": []string{"read"},
		"expiry":      "1M",
	})
	require.Equal(t, http.StatusCreated, createResp.StatusCode)
	data := decodeData(t, createResp)
	rawKey := data["key"].(string)
	keyID := data["id"].(string)
	assert.True(t, strings.HasPrefix(rawKey, "sk_live_"))

	withKey := func(method, path string, body any) *http.Response {
		var reader *bytes.Reader
		if body != nil {
			b, _ := json.Marshal(body)
			reader = bytes.NewReader(b)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, _ := http.NewRequest(method, app.server.URL+path, reader)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", rawKey)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Read permission works.
	balResp := withKey(http.MethodGet, "/api/v1/wallet/balance", nil)
	assert.Equal(t, http.StatusOK, balResp.StatusCode)
	balResp.Body.Close()

	// Transfer permission was not granted.
	trfResp := withKey(http.MethodPost, "/api/v1/wallet/transfer", map[string]any{
		"recipient_wallet_number": "1234567890123",
		"amount":                  1000,
	})
	assert.Equal(t, http.StatusForbidden, trfResp.StatusCode)
	assert.Equal(t, "AUTH_005", errorCode(t, trfResp))

	// Key management requires a session, not a key.
	keysResp := withKey(http.MethodGet, "/api/v1/keys", nil)
	assert.Equal(t, http.StatusForbidden, keysResp.StatusCode)
	keysResp.Body.Close()

	// Revoke via session, then the key stops working.
	revokeResp := authedJSON(t, app, http.MethodDelete, "/api/v1/keys/"+keyID, token, nil)
	require.Equal(t, http.StatusOK, revokeResp.StatusCode)
	revokeResp.Body.Close()

	revokedResp := withKey(http.MethodGet, "/api/v1/wallet/balance", nil)
	assert.Equal(t, http.StatusForbidden, revokedResp.StatusCode)
	assert.Equal(t, "AUTH_003", errorCode(t, revokedResp))
}

func TestIntegration_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/api/v1/wallet/balance")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_AuditTrail(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	_, bobID := login(t, app, "id-token-bob")
	fundWallet(t, app, aliceToken, 50000)

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
		"recipient_wallet_number": walletNumberOf(t, app, bobID),
		"amount":                  10000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Audit persistence is fire-and-forget.
	require.Eventually(t, func() bool {
		return app.audits.count() > 0
	}, 2*time.Second, 10*time.Millisecond)
}
