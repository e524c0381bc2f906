package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbela/task-with-api-notification/internal/auth"
	"github.com/hbela/task-with-api-notification/internal/common"
)

const testClientID = "test-client.apps.googleusercontent.com"

// certFixture is a signing key plus a certs endpoint serving its
// self-signed certificate the way Google's PEM endpoint does.
type certFixture struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
}

func newCertFixture(t *testing.T) *certFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test-signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	pemCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	kid := "test-kid-1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		json.NewEncoder(w).Encode(map[string]string{kid: string(pemCert)})
	}))
	t.Cleanup(server.Close)

	return &certFixture{key: key, kid: kid, server: server}
}

// signIDToken produces an RS256 ID token signed by the fixture key.
func (f *certFixture) signIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = f.kid
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func googleClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "google-sub-42",
		"email":          "bob@example.com",
		"email_verified": true,
		"name":           "Bob",
		"picture":        "https://example.com/b.png",
		"iat":            time.Now().Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestGoogleVerifier_ValidToken(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	idToken := fixture.signIDToken(t, googleClaims())

	identity, err := verifier.Verify(context.Background(), idToken)
	require.NoError(t, err)
	assert.Equal(t, "google-sub-42", identity.GoogleID)
	assert.Equal(t, "bob@example.com", identity.Email)
	assert.Equal(t, "Bob", identity.Name)
	assert.Equal(t, "https://example.com/b.png", identity.Avatar)
}

func TestGoogleVerifier_AcceptsBareIssuer(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	claims := googleClaims()
	claims["iss"] = "accounts.google.com"

	_, err := verifier.Verify(context.Background(), fixture.signIDToken(t, claims))
	assert.NoError(t, err)
}

func TestGoogleVerifier_WrongAudience(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	claims := googleClaims()
	claims["aud"] = "someone-else.apps.googleusercontent.com"

	_, err := verifier.Verify(context.Background(), fixture.signIDToken(t, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestGoogleVerifier_WrongIssuer(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	claims := googleClaims()
	claims["iss"] = "https://evil.example.com"

	_, err := verifier.Verify(context.Background(), fixture.signIDToken(t, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestGoogleVerifier_UnverifiedEmail(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	claims := googleClaims()
	claims["email_verified"] = false

	_, err := verifier.Verify(context.Background(), fixture.signIDToken(t, claims))
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
}

func TestGoogleVerifier_ExpiredToken(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	claims := googleClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	_, err := verifier.Verify(context.Background(), fixture.signIDToken(t, claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestGoogleVerifier_UnknownKid(t *testing.T) {
	fixture := newCertFixture(t)
	verifier := auth.NewGoogleVerifier(testClientID, fixture.server.URL, common.NewSilentLogger())

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, googleClaims())
	token.Header["kid"] = "unknown-kid"
	signed, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
