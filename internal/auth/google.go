package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/models"
)

// DefaultGoogleCertsURL serves Google's current ID-token signing
// certificates as PEM, keyed by kid.
const DefaultGoogleCertsURL = "https://www.googleapis.com/oauth2/v1/certs"

// GoogleVerifier validates a Google ID token and returns the identity
// it asserts.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*models.GoogleIdentity, error)
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
	HostedDomain  string `json:"hd"`
	jwt.RegisteredClaims
}

type googleVerifier struct {
	clientID string
	certsURL string
	client   *http.Client
	logger   *common.Logger

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	keyExpiry time.Time
}

// NewGoogleVerifier builds a verifier for ID tokens issued to the given
// OAuth client ID. certsURL may be empty to use Google's endpoint.
func NewGoogleVerifier(clientID, certsURL string, logger *common.Logger) GoogleVerifier {
	if certsURL == "" {
		certsURL = DefaultGoogleCertsURL
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &googleVerifier{
		clientID: clientID,
		certsURL: certsURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*models.GoogleIdentity, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.keyFor(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	issuer, _ := claims.GetIssuer()
	if issuer != "accounts.google.com" && issuer != "https://accounts.google.com" {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, issuer)
	}
	audience, _ := claims.GetAudience()
	if !containsAudience(audience, v.clientID) {
		return nil, fmt.Errorf("%w: token audience mismatch", ErrInvalidToken)
	}
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &models.GoogleIdentity{
		GoogleID: claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Avatar:   claims.Picture,
		Locale:   claims.Locale,
		Domain:   claims.HostedDomain,
	}, nil
}

func containsAudience(aud jwt.ClaimStrings, clientID string) bool {
	for _, a := range aud {
		if a == clientID {
			return true
		}
	}
	return false
}

// keyFor returns the RSA public key for kid, refreshing the cached cert
// set when it is stale or missing the key.
func (v *googleVerifier) keyFor(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if key, ok := v.keys[kid]; ok && time.Now().Before(v.keyExpiry) {
		return key, nil
	}

	if err := v.refreshKeysLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no google signing key for kid %q", kid)
	}
	return key, nil
}

var maxAgePattern = regexp.MustCompile(`max-age=(\d+)`)

func (v *googleVerifier) refreshKeysLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build certs request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch google certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google certs endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read certs response: %w", err)
	}

	var certs map[string]string
	if err := json.Unmarshal(body, &certs); err != nil {
		return fmt.Errorf("failed to decode certs response: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		key, err := parseRSAPublicKey(pemCert)
		if err != nil {
			v.logger.Warn().Str("kid", kid).Err(err).Msg("Skipping unparseable google cert")
			continue
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return fmt.Errorf("google certs response contained no usable keys")
	}

	ttl := 1 * time.Hour
	if m := maxAgePattern.FindStringSubmatch(resp.Header.Get("Cache-Control")); len(m) == 2 {
		if secs, err := strconv.Atoi(m[1]); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	v.keys = keys
	v.keyExpiry = time.Now().Add(ttl)
	v.logger.Debug().Int("keys", len(keys)).Dur("ttl", ttl).Msg("Refreshed google signing keys")
	return nil
}

func parseRSAPublicKey(pemCert string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemCert))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	key, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("certificate does not carry an RSA key")
	}
	return key, nil
}
