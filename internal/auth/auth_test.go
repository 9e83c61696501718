package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(secret, 7*24*time.Hour)

	token, expiresAt, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager(secret, time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }
	token, _, err := m.Issue("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	m := NewTokenManager(secret, time.Hour)

	other, _, err := NewTokenManager("another-secret-another-secret-xx", time.Hour).Issue("user-1")
	require.NoError(t, err)
	_, err = m.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresSubject(t *testing.T) {
	m := NewTokenManager(secret, time.Hour)
	_, _, err := m.Issue("")
	assert.Error(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = m.Parse(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedStateStore(t *testing.T) {
	ctx := context.Background()
	store := NewSignedStateStore(secret)

	state, err := store.Issue(ctx)
	require.NoError(t, err)
	assert.NoError(t, store.Consume(ctx, state))

	assert.ErrorIs(t, store.Consume(ctx, ""), ErrInvalidState)
	assert.ErrorIs(t, store.Consume(ctx, "tampered"), ErrInvalidState)

	bearer, _, err := NewTokenManager(secret, time.Hour).Issue("user-1")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Consume(ctx, bearer), ErrInvalidState, "bearer tokens are not states")

	store.now = func() time.Time { return time.Now().Add(-2 * StateTTL) }
	stale, err := store.Issue(ctx)
	require.NoError(t, err)
	store.now = time.Now
	assert.ErrorIs(t, store.Consume(ctx, stale), ErrInvalidState)
}

func newGoogleTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"sub":"g-42","email":"asha@example.com","email_verified":true,"name":"Asha","picture":"https://img/a.png"}`)
	})
	return httptest.NewServer(mux)
}

func TestGoogleProviderExchange(t *testing.T) {
	srv := newGoogleTestServer(t)
	defer srv.Close()

	provider := NewGoogleProvider(GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoURL:  srv.URL + "/userinfo",
	})

	profile, err := provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &GoogleProfile{Subject: "g-42", Email: "asha@example.com", EmailVerified: true, Name: "Asha", Picture: "https://img/a.png"}, profile)

	_, err = provider.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
	_, err = provider.Exchange(context.Background(), "")
	assert.Error(t, err)
}

func TestGoogleProviderAuthCodeURL(t *testing.T) {
	provider := NewGoogleProvider(GoogleConfig{ClientID: "cid", ClientSecret: "s", RedirectURL: "http://localhost/callback"})

	u, err := url.Parse(provider.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "email")
}
