package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/dto"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/model"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential store the auth flow depends on.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	// UpdateRefreshToken overwrites the session slot; nil clears it.
	UpdateRefreshToken(ctx context.Context, id string, token *string) error
	// SwapRefreshToken sets the slot to next only while it still holds expected,
	// failing with ErrSessionConflict otherwise.
	SwapRefreshToken(ctx context.Context, id string, expected, next *string) error
}

// AuthService runs register, login, refresh and logout against the single
// refresh-token slot per user. Session starts swap the slot against the value read
// with the user, so of two concurrent logins one gets ErrSessionConflict instead of
// a refresh token that is already dead. Logout clears unconditionally.
type AuthService struct {
	users    UserStore
	tokens   *TokenService
	metrics  *metrics.Metrics
	hashCost int
}

type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

func WithMetrics(m *metrics.Metrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

func NewAuthService(users UserStore, tokens *TokenService, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Register")
	name := strings.TrimSpace(req.Name)

	_, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		logger.LogAuth("", "register", false, zap.String("reason", "email_taken"))
		return nil, apperrors.ErrEmailTaken
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, err
	}

	// The binding max counts runes; bcrypt rejects more than 72 bytes.
	if len(req.Password) > constants.MaxPasswordBytes {
		return nil, apperrors.Validation(constants.MsgPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		Email:    req.Email,
		Name:     name,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncAuthEvent("register")
	logger.LogAuth(user.ID, "register", true)
	logger.InfoWithContext(ctx, "User registered").
		String("user_id", user.ID).
		Log()

	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Login")

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.metrics.IncAuthFailure(metrics.ReasonUserNotFound)
			logger.LogAuth("", "login", false, zap.String("reason", metrics.ReasonUserNotFound))
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.metrics.IncAuthFailure(metrics.ReasonInvalidCredentials)
		logger.LogAuth(user.ID, "login", false, zap.String("reason", metrics.ReasonInvalidCredentials))
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.IncAuthEvent("login")
	logger.LogAuth(user.ID, "login", true)

	return resp, nil
}

// startSession mints both tokens and swaps the new refresh token into the slot,
// invalidating any refresh token handed out before. user.RefreshToken must be the
// slot value as loaded.
func (s *AuthService) startSession(ctx context.Context, user *model.User) (*dto.AuthResponse, error) {
	identity := Identity{UserID: user.ID, Email: user.Email}

	accessToken, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	refreshToken, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.SwapRefreshToken(ctx, user.ID, user.RefreshToken, &refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrSessionConflict) {
			logger.LogAuth(user.ID, "session_start", false, zap.String("reason", "slot_conflict"))
		}
		return nil, err
	}
	user.RefreshToken = &refreshToken

	return &dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh reissues an access token. The refresh token must verify and match the
// stored slot exactly; every rejection is the same ErrInvalidRefreshToken. The slot
// itself is left unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Refresh")

	reject := func(reason string, cause error) error {
		s.metrics.IncAuthFailure(metrics.ReasonRefreshRejected)
		logger.WarnWithContext(ctx, "Refresh rejected").
			String("reason", reason).
			Err(cause).
			Log()
		return apperrors.WrapError(apperrors.ErrInvalidRefreshToken, cause)
	}

	if refreshToken == "" {
		return nil, reject("missing", nil)
	}

	identity, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		reason := metrics.ReasonTokenInvalid
		if errors.Is(err, apperrors.ErrTokenExpired) {
			reason = metrics.ReasonTokenExpired
		}
		return nil, reject(reason, err)
	}

	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, reject("unknown_user", err)
		}
		return nil, err
	}

	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, reject("slot_mismatch", nil)
	}

	accessToken, err := s.tokens.IssueAccess(Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.metrics.IncAuthEvent("refresh")
	return &dto.RefreshResponse{AccessToken: accessToken}, nil
}

// Logout clears the slot so the outstanding refresh token stops working.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "Logout")

	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		// No row means no slot to clear.
		logger.WarnWithContext(ctx, "Logout for missing user").
			String("user_id", userID).
			Log()
		return nil
	}

	s.metrics.IncAuthEvent("logout")
	logger.LogAuth(userID, "logout", true)
	return nil
}

// Me returns the stored profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "Me")

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}
