package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wallet-backend/config"
	"wallet-backend/internal/core/ports"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Verifier checks Google ID tokens against the tokeninfo endpoint. It
// implements ports.IdentityVerifier.
type Verifier struct {
	clientID     string
	tokenInfoURL string
	httpClient   HTTPClient
}

// NewVerifier creates a Google ID token verifier.
func NewVerifier(cfg config.GoogleConfig, httpClient HTTPClient) *Verifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Verifier{
		clientID:     cfg.ClientID,
		tokenInfoURL: cfg.TokenInfoURL,
		httpClient:   httpClient,
	}
}

type tokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Exp           string `json:"exp"`
}

// VerifyIDToken validates the token with Google and returns the profile.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*ports.GoogleProfile, error) {
	endpoint := v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating tokeninfo request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tokeninfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decoding tokeninfo response: %w", err)
	}

	if v.clientID != "" && info.Aud != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil && time.Now().Unix() > exp {
		return nil, fmt.Errorf("token expired")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("token missing subject or email")
	}
	if info.EmailVerified != "true" {
		return nil, fmt.Errorf("email not verified")
	}

	return &ports.GoogleProfile{
		GoogleID: info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}
