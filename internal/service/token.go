package service

import (
	"errors"
	"time"

	"github.com/Payphone-Digital/taskflow/config"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the principal carried by both token classes.
type Identity = ctxutil.Identity

// Claims is the JWT payload for access and refresh tokens
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var validMethods = []string{jwt.SigningMethodHS256.Alg()}

// SignToken mints an HS256 token for identity that expires ttl after now.
// A random jti keeps two tokens minted in the same second distinct.
func SignToken(identity Identity, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	return token.SignedString(secret)
}

// VerifyToken checks signature, algorithm and expiry against now.
// Returns ErrTokenExpired for a correctly signed token past exp, ErrTokenInvalid otherwise.
func VerifyToken(tokenString string, secret []byte, now time.Time) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return secret, nil
		},
		jwt.WithValidMethods(validMethods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperrors.WrapError(apperrors.ErrTokenExpired, err)
		}
		return Identity{}, apperrors.WrapError(apperrors.ErrTokenInvalid, err)
	}

	if !parsed.Valid || claims.UserID == "" || claims.Email == "" {
		return Identity{}, apperrors.ErrTokenInvalid
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// TokenService issues and verifies access and refresh tokens. Each class has its own
// secret and lifetime, so one class can never be accepted as the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg config.JWTConfig, opts ...TokenOption) *TokenService {
	s := &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessExpiry,
		refreshTTL:    cfg.RefreshExpiry,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) IssueAccess(identity Identity) (string, error) {
	return SignToken(identity, s.accessSecret, s.accessTTL, s.now())
}

func (s *TokenService) IssueRefresh(identity Identity) (string, error) {
	return SignToken(identity, s.refreshSecret, s.refreshTTL, s.now())
}

func (s *TokenService) VerifyAccess(token string) (Identity, error) {
	return VerifyToken(token, s.accessSecret, s.now())
}

func (s *TokenService) VerifyRefresh(token string) (Identity, error) {
	return VerifyToken(token, s.refreshSecret, s.now())
}
