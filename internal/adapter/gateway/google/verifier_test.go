package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T, clientID string, handler http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewVerifier(config.GoogleConfig{
		ClientID:     clientID,
		TokenInfoURL: srv.URL,
		Timeout:      5 * time.Second,
	}, nil)
}

func validTokenInfoJSON(aud string) string {
	return fmt.Sprintf(`{
		"sub": "google-123",
		"aud": %q,
		"email": "ada@example.com",
		"email_verified": "true",
		"name": "Ada Lovelace",
		"exp": "%d"
	}`, aud, time.Now().Add(time.Hour).Unix())
}

func TestVerifier_VerifyIDToken_Success(t *testing.T) {
	v := newTestVerifier(t, "my-client-id", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-abc", r.URL.Query().Get("id_token"))
		w.Write([]byte(validTokenInfoJSON("my-client-id")))
	})

	profile, err := v.VerifyIDToken(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, "google-123", profile.GoogleID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.Equal(t, "Ada Lovelace", profile.Name)
}

func TestVerifier_VerifyIDToken_AudienceMismatch(t *testing.T) {
	v := newTestVerifier(t, "my-client-id", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validTokenInfoJSON("someone-elses-client")))
	})

	profile, err := v.VerifyIDToken(context.Background(), "token-abc")
	assert.Nil(t, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audience")
}

func TestVerifier_VerifyIDToken_Expired(t *testing.T) {
	v := newTestVerifier(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fmt.Sprintf(`{
			"sub": "google-123",
			"email": "ada@example.com",
			"email_verified": "true",
			"exp": "%d"
		}`, time.Now().Add(-time.Hour).Unix())))
	})

	profile, err := v.VerifyIDToken(context.Background(), "token-abc")
	assert.Nil(t, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerifier_VerifyIDToken_UnverifiedEmail(t *testing.T) {
	v := newTestVerifier(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fmt.Sprintf(`{
			"sub": "google-123",
			"email": "ada@example.com",
			"email_verified": "false",
			"exp": "%d"
		}`, time.Now().Add(time.Hour).Unix())))
	})

	profile, err := v.VerifyIDToken(context.Background(), "token-abc")
	assert.Nil(t, profile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not verified")
}

func TestVerifier_VerifyIDToken_RejectedByGoogle(t *testing.T) {
	v := newTestVerifier(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_token"}`))
	})

	profile, err := v.VerifyIDToken(context.Background(), "garbage")
	assert.Nil(t, profile)
	assert.Error(t, err)
}
