package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hbela/task-with-api-notification/internal/common"
	"github.com/hbela/task-with-api-notification/internal/interfaces"
	"github.com/hbela/task-with-api-notification/internal/models"
)

// AccessClaims are the claims carried by access tokens. TokenType
// distinguishes access tokens from any other JWT signed with the same
// secret; verification rejects everything but "access".
type AccessClaims struct {
	Email     string `json:"email"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

const accessTokenType = "access"

// Service issues and verifies access tokens and manages the refresh
// token lifecycle, including single-use rotation.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifier   GoogleVerifier
	directory  *Directory
	users      interfaces.UserStore
	tokens     interfaces.RefreshTokenStore
	logger     *common.Logger
	now        func() time.Time
}

// NewService wires a token service from configuration and storage.
func NewService(cfg *common.AuthConfig, verifier GoogleVerifier, users interfaces.UserStore, tokens interfaces.RefreshTokenStore, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.GetAccessTokenExpiry(),
		refreshTTL: cfg.GetRefreshTokenExpiry(),
		verifier:   verifier,
		directory:  NewDirectory(users),
		users:      users,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
	}
}

// Login verifies a Google ID token, upserts the account and issues a
// fresh token pair.
func (s *Service) Login(ctx context.Context, idToken string) (*models.User, *models.TokenPair, error) {
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.directory.FindOrCreate(ctx, identity)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	return user, pair, nil
}

// Refresh redeems a refresh token for a new pair. The presented token is
// revoked and linked to its replacement in one atomic step, so it can
// never be redeemed twice. Check order matters: unknown and revoked
// tokens fail before expiry is even considered.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, *models.TokenPair, error) {
	record, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if record == nil {
		return nil, nil, ErrTokenNotFound
	}
	if record.Revoked {
		s.logger.Warn().Str("user_id", record.UserID).Msg("Revoked refresh token presented")
		return nil, nil, ErrTokenRevoked
	}
	if record.Expired(s.now()) {
		return nil, nil, ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	replacement := s.newRefreshRecord(user.ID)
	if err := s.tokens.Rotate(ctx, record.Token, replacement); err != nil {
		return nil, nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("Refresh token rotated")
	return user, &models.TokenPair{AccessToken: access, RefreshToken: replacement.Token}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are not an
// error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil && !errors.Is(err, ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll revokes every live refresh token for a user, ending all of
// their sessions.
func (s *Service) RevokeAll(ctx context.Context, userID string) (int, error) {
	n, err := s.tokens.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info().Str("user_id", userID).Int("revoked", n).Msg("Revoked all sessions")
	}
	return n, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != accessTokenType {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// CleanupExpired removes refresh tokens that are past expiry or revoked.
// A replayed token that was already cleaned up fails as unknown rather
// than revoked; both reject the refresh.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

// AccessTTL reports how long issued access tokens live, surfaced to
// clients as expiresIn.
func (s *Service) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL reports how long issued refresh tokens live, for cookie
// max-age calculation.
func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *Service) issuePair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}
	record := s.newRefreshRecord(user.ID)
	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: record.Token}, nil
}

func (s *Service) signAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := &AccessClaims{
		Email:     user.Email,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *Service) newRefreshRecord(userID string) *models.RefreshToken {
	now := s.now().UTC()
	return &models.RefreshToken{
		Token:     newOpaqueToken(),
		UserID:    userID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
}

// newOpaqueToken returns 32 bytes of randomness hex encoded.
func newOpaqueToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)
}
