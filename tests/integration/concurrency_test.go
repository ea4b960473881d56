package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The in-memory transactor serializes atomic units the way postgres row locks
// do, so these tests can assert exact conservation: no matter how requests
// interleave, the sum of all balances equals the sum of all confirmed
// deposits.

func TestConcurrentTransfers_Conservation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	bobToken, bobID := login(t, app, "id-token-bob")
	bobNumber := walletNumberOf(t, app, bobID)

	fundWallet(t, app, aliceToken, 1000000)

	// 50 concurrent transfers of 10,000 each, distinct idempotency keys.
	// Total moved: 500,000 — exactly half the funded amount.
	concurrency := 50
	amount := int64(10000)

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
				"recipient_wallet_number": bobNumber,
				"amount":                  amount,
				"idempotency_key":         fmt.Sprintf("conc-%d", idx),
			})
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(concurrency), successCount.Load(), "every transfer had sufficient funds and should succeed")
	assert.Equal(t, int64(500000), getBalance(t, app, aliceToken))
	assert.Equal(t, int64(500000), getBalance(t, app, bobToken))
}

func TestConcurrentTransfers_NeverOverdraw(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	bobToken, bobID := login(t, app, "id-token-bob")
	bobNumber := walletNumberOf(t, app, bobID)

	// Fund 100,000 then fire 20 transfers of 10,000: only 10 can succeed.
	fundWallet(t, app, aliceToken, 100000)

	concurrency := 20
	amount := int64(10000)

	var wg sync.WaitGroup
	var successCount, insufficientCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
				"recipient_wallet_number": bobNumber,
				"amount":                  amount,
				"idempotency_key":         fmt.Sprintf("overdraw-%d", idx),
			})
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	t.Logf("overdraw test: %d succeeded, %d rejected", successCount.Load(), insufficientCount.Load())

	assert.Equal(t, int64(10), successCount.Load(), "exactly balance/amount transfers can succeed")
	assert.Equal(t, int64(10), insufficientCount.Load())

	aliceBalance := getBalance(t, app, aliceToken)
	bobBalance := getBalance(t, app, bobToken)
	assert.Equal(t, int64(0), aliceBalance)
	assert.Equal(t, int64(100000), bobBalance)
	assert.GreaterOrEqual(t, aliceBalance, int64(0), "balance must never go negative")
}

func TestConcurrentTransfers_OpposingDirections(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, aliceID := login(t, app, "id-token-alice")
	bobToken, bobID := login(t, app, "id-token-bob")
	aliceNumber := walletNumberOf(t, app, aliceID)
	bobNumber := walletNumberOf(t, app, bobID)

	fundWallet(t, app, aliceToken, 500000)
	fundWallet(t, app, bobToken, 500000)

	// Opposing transfers exercise the fixed lock ordering: if wallets were
	// locked in request order, alice->bob and bob->alice would deadlock.
	concurrency := 20
	amount := int64(5000)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
				"recipient_wallet_number": bobNumber,
				"amount":                  amount,
				"idempotency_key":         fmt.Sprintf("a2b-%d", idx),
			})
			resp.Body.Close()
		}(i)
		go func(idx int) {
			defer wg.Done()
			resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", bobToken, map[string]any{
				"recipient_wallet_number": aliceNumber,
				"amount":                  amount,
				"idempotency_key":         fmt.Sprintf("b2a-%d", idx),
			})
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	// Equal flows in both directions cancel out; the total is conserved.
	aliceBalance := getBalance(t, app, aliceToken)
	bobBalance := getBalance(t, app, bobToken)
	assert.Equal(t, int64(1000000), aliceBalance+bobBalance, "funds are conserved")
	assert.Equal(t, int64(500000), aliceBalance)
	assert.Equal(t, int64(500000), bobBalance)
}

func TestConcurrentTransfers_SameIdempotencyKey(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken, _ := login(t, app, "id-token-alice")
	bobToken, bobID := login(t, app, "id-token-bob")
	bobNumber := walletNumberOf(t, app, bobID)

	fundWallet(t, app, aliceToken, 100000)

	// 10 concurrent requests replaying one idempotency key. Races past the
	// replay pre-check trip the unique reference constraint; losers re-read
	// the winner's leg, so every caller gets the same successful result and
	// funds move exactly once.
	concurrency := 10

	var wg sync.WaitGroup
	var successCount atomic.Int64
	references := make(chan string, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/transfer", aliceToken, map[string]any{
				"recipient_wallet_number": bobNumber,
				"amount":                  25000,
				"idempotency_key":         "same-key-once",
			})
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successCount.Add(1)
				data := decodeData(t, resp)
				references <- data["reference"].(string)
			}
		}()
	}
	wg.Wait()
	close(references)

	require.Equal(t, int64(concurrency), successCount.Load(), "every replay returns the original result")
	for ref := range references {
		assert.Equal(t, "TRF-same-key-once", ref)
	}
	assert.Equal(t, int64(75000), getBalance(t, app, aliceToken), "funds moved exactly once")
	assert.Equal(t, int64(25000), getBalance(t, app, bobToken))
}

func TestConcurrentWebhookDeliveries_CreditOnce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := login(t, app, "id-token-alice")

	resp := authedJSON(t, app, http.MethodPost, "/api/v1/wallet/deposit", token, map[string]any{"amount": 50000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reference := decodeData(t, resp)["reference"].(string)

	// Providers deliver at least once; simulate 20 simultaneous deliveries of
	// the same event.
	concurrency := 20

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			whResp := deliverWebhook(t, app, "charge.success", reference, 50000, "success")
			whResp.Body.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50000), getBalance(t, app, token), "deposit credited exactly once")
}
