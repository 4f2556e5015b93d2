package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-real-key"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	exp := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	raw := signedToken(t, jwt.MapClaims{
		"sub":                "user-1",
		"iss":                "https://auth.example.com/realms/usable",
		"preferred_username": "ada",
		"email":              "ada@example.com",
		"exp":                exp.Unix(),
	})

	info, err := Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Subject)
	assert.Equal(t, "ada", info.Username)
	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, "https://auth.example.com/realms/usable", info.Issuer)
	assert.True(t, exp.Equal(info.ExpiresAt))

	assert.False(t, info.Expired(exp.Add(-time.Hour), time.Minute))
	assert.True(t, info.Expired(exp.Add(-30*time.Second), time.Minute))
	assert.True(t, info.Expired(exp.Add(time.Hour), 0))
}

func TestInspect_NoExpiry(t *testing.T) {
	info, err := Inspect(signedToken(t, jwt.MapClaims{"sub": "x"}))
	require.NoError(t, err)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now(), time.Hour))
}

func TestInspect_Opaque(t *testing.T) {
	_, err := Inspect("opaque-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

type staticSource struct {
	tokens []*oauth2.Token
	calls  int
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	tok := s.tokens[s.calls]
	if s.calls < len(s.tokens)-1 {
		s.calls++
	}
	return tok, nil
}

type memorySaver struct {
	saved []*oauth2.Token
	err   error
}

func (m *memorySaver) Set(tok *oauth2.Token) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, tok)
	return nil
}

func TestPersistingTokenSource(t *testing.T) {
	expired := &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)}
	fresh := &oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)}
	saver := &memorySaver{}

	ts := NewPersistingTokenSource(&staticSource{tokens: []*oauth2.Token{fresh}}, expired, saver)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)

	// the cached token is reused and not saved again
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "new", saver.saved[0].AccessToken)
}

func TestPersistingTokenSource_ValidInitialNotSaved(t *testing.T) {
	valid := &oauth2.Token{AccessToken: "current", Expiry: time.Now().Add(time.Hour)}
	saver := &memorySaver{}

	ts := NewPersistingTokenSource(&staticSource{tokens: []*oauth2.Token{{AccessToken: "unused"}}}, valid, saver)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "current", tok.AccessToken)
	assert.Empty(t, saver.saved)
}

func TestPersistingTokenSource_SaveErrorIgnored(t *testing.T) {
	saver := &memorySaver{err: errors.New("disk full")}
	ts := NewPersistingTokenSource(&staticSource{tokens: []*oauth2.Token{{AccessToken: "a", Expiry: time.Now().Add(time.Hour)}}}, nil, saver)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.AccessToken)
}

func discoveryServer(t *testing.T, withDevice bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			doc := map[string]any{
				"issuer":                 srv.URL,
				"authorization_endpoint": srv.URL + "/auth",
				"token_endpoint":         srv.URL + "/token",
				"jwks_uri":               srv.URL + "/certs",
				"id_token_signing_alg_values_supported": []string{"RS256"},
			}
			if withDevice {
				doc["device_authorization_endpoint"] = srv.URL + "/device"
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(doc)
		case "/device":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"device_code":"dev-1","user_code":"ABCD-EFGH","verification_uri":"https://auth.example.com/device","expires_in":600,"interval":5}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewAuthenticator(t *testing.T) {
	srv := discoveryServer(t, true)

	a, err := NewAuthenticator(context.Background(), Config{IssuerURL: srv.URL, ClientID: "taskable-cli"})
	require.NoError(t, err)

	cfg := a.OAuth2Config()
	assert.Equal(t, srv.URL+"/token", cfg.Endpoint.TokenURL)
	assert.Equal(t, srv.URL+"/device", cfg.Endpoint.DeviceAuthURL)
	assert.Contains(t, cfg.Scopes, "offline_access")

	da, err := a.StartDeviceLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-EFGH", da.UserCode)
	assert.Equal(t, "dev-1", da.DeviceCode)
}

func TestNewAuthenticator_NoDeviceEndpoint(t *testing.T) {
	srv := discoveryServer(t, false)

	a, err := NewAuthenticator(context.Background(), Config{IssuerURL: srv.URL, ClientID: "taskable-cli"})
	require.NoError(t, err)

	_, err = a.StartDeviceLogin(context.Background())
	assert.ErrorIs(t, err, ErrDeviceFlowUnsupported)
}

func TestNewAuthenticator_InvalidConfig(t *testing.T) {
	_, err := NewAuthenticator(context.Background(), Config{ClientID: "x"})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestVerifyIDToken_Missing(t *testing.T) {
	srv := discoveryServer(t, false)
	a, err := NewAuthenticator(context.Background(), Config{IssuerURL: srv.URL, ClientID: "taskable-cli"})
	require.NoError(t, err)

	_, err = a.VerifyIDToken(context.Background(), &oauth2.Token{AccessToken: "x"})
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims(map[string]any{"sub": "s", "email": "e@x", "name": "Ada"})
	assert.Equal(t, &Identity{Subject: "s", Username: "e@x", Email: "e@x", Name: "Ada"}, id)
}
