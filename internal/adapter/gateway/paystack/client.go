package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wallet-backend/config"
	"wallet-backend/internal/core/ports"

	"github.com/rs/zerolog"
)

// MinorPerMajor is the number of minor currency units (kobo) per major unit (naira).
const MinorPerMajor = 100

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Paystack REST API. It implements ports.PaymentGateway.
type Client struct {
	secretKey   string
	baseURL     string
	callbackURL string
	httpClient  HTTPClient
	log         zerolog.Logger
}

// NewClient creates a Paystack API client.
func NewClient(cfg config.PaystackConfig, httpClient HTTPClient, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		secretKey:   cfg.SecretKey,
		baseURL:     cfg.BaseURL,
		callbackURL: cfg.CallbackURL,
		httpClient:  httpClient,
		log:         log,
	}
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// InitializeTransaction creates a checkout session for a deposit. Amount is in
// minor units, which is what the Paystack API expects.
func (c *Client) InitializeTransaction(ctx context.Context, email string, amount int64, reference string) (*ports.CheckoutSession, error) {
	body := initializeRequest{
		Email:       email,
		Amount:      amount,
		Reference:   reference,
		CallbackURL: c.callbackURL,
	}

	var out initializeResponse
	if err := c.post(ctx, "/transaction/initialize", body, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", out.Message)
	}

	return &ports.CheckoutSession{
		Reference:        out.Data.Reference,
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
	}, nil
}

// VerifyTransaction fetches the current state of a transaction by reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*ports.VerifyResult, error) {
	var out verifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &out); err != nil {
		return nil, err
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", out.Message)
	}

	return &ports.VerifyResult{
		Status: out.Data.Status,
		Amount: out.Data.Amount,
	}, nil
}

// VerifySignature checks the HMAC-SHA512 signature Paystack sends with each
// webhook. The hash must be computed over the raw request body, byte for byte.
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling paystack request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating paystack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating paystack request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("paystack: request failed")
		return fmt.Errorf("calling paystack: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading paystack response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("paystack: non-2xx response")
		return fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding paystack response: %w", err)
	}
	return nil
}
