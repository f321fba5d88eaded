package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/dto"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/model"
	"github.com/Payphone-Digital/taskflow/internal/testutil"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Str0ng!Pass"

type AuthServiceSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *stepClock
	users   *testutil.UserStore
	tokens  *TokenService
	metrics *metrics.Metrics
	svc     *AuthService
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = newTestClock()
	s.users = testutil.NewUserStore()
	s.tokens = NewTokenService(testJWTConfig, WithClock(s.clock.Now))
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = NewAuthService(s.users, s.tokens, WithHashCost(bcrypt.MinCost), WithMetrics(s.metrics))
}

func (s *AuthServiceSuite) register(email string) *dto.AuthResponse {
	resp, err := s.svc.Register(s.ctx, &dto.RegisterRequest{Email: email, Password: strongPassword, Name: "  Alice  "})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceSuite) login(email, password string) (*dto.AuthResponse, error) {
	return s.svc.Login(s.ctx, &dto.LoginRequest{Email: email, Password: password})
}

func (s *AuthServiceSuite) TestRegister_CreatesSession() {
	resp := s.register("alice@example.com")

	s.NotEmpty(resp.User.ID)
	s.Equal("alice@example.com", resp.User.Email)
	s.Equal("Alice", resp.User.Name)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)

	slot := s.users.Slot(resp.User.ID)
	s.Require().NotNil(slot)
	s.Equal(resp.RefreshToken, *slot)

	stored, err := s.users.FindByID(s.ctx, resp.User.ID)
	s.Require().NoError(err)
	s.NotEqual(strongPassword, stored.Password)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(strongPassword)))

	identity, err := s.tokens.VerifyAccess(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(Identity{UserID: resp.User.ID, Email: "alice@example.com"}, identity)
}

func (s *AuthServiceSuite) TestRegister_EmailTaken() {
	s.register("alice@example.com")

	_, err := s.svc.Register(s.ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: strongPassword, Name: "Other"})
	s.ErrorIs(err, apperrors.ErrEmailTaken)
}

func (s *AuthServiceSuite) TestRegister_EmailIsCaseSensitive() {
	s.register("alice@example.com")
	s.register("Alice@example.com")
}

func (s *AuthServiceSuite) TestRegister_PasswordOverBcryptLimit() {
	long := "Aa1!" + strings.Repeat("é", 40)

	_, err := s.svc.Register(s.ctx, &dto.RegisterRequest{Email: "long@example.com", Password: long, Name: "L"})
	s.ErrorIs(err, apperrors.Validation(""))
	s.Equal("Password must be at most 72 bytes", apperrors.GetErrorMessage(err, ""))
}

func (s *AuthServiceSuite) TestLogin_Failures() {
	s.register("alice@example.com")

	_, err := s.login("nobody@example.com", strongPassword)
	s.ErrorIs(err, apperrors.ErrUserNotFound)

	_, err = s.login("alice@example.com", "Wr0ng!Pass")
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)

	s.Equal(1.0, promtest.ToFloat64(s.metrics.AuthFailures.WithLabelValues(metrics.ReasonUserNotFound)))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AuthFailures.WithLabelValues(metrics.ReasonInvalidCredentials)))
}

func (s *AuthServiceSuite) TestLogin_OverwritesSlot() {
	registered := s.register("alice@example.com")

	first, err := s.login("alice@example.com", strongPassword)
	s.Require().NoError(err)
	second, err := s.login("alice@example.com", strongPassword)
	s.Require().NoError(err)

	s.NotEqual(first.RefreshToken, second.RefreshToken)
	s.Equal(second.RefreshToken, *s.users.Slot(registered.User.ID))

	// Superseded tokens still verify cryptographically but are rejected
	_, err = s.tokens.VerifyRefresh(first.RefreshToken)
	s.Require().NoError(err)

	_, err = s.svc.Refresh(s.ctx, first.RefreshToken)
	s.ErrorIs(err, apperrors.ErrInvalidRefreshToken)
	_, err = s.svc.Refresh(s.ctx, registered.RefreshToken)
	s.ErrorIs(err, apperrors.ErrInvalidRefreshToken)

	resp, err := s.svc.Refresh(s.ctx, second.RefreshToken)
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
}

func (s *AuthServiceSuite) TestRefresh_LeavesSlotUntouched() {
	registered := s.register("alice@example.com")

	resp, err := s.svc.Refresh(s.ctx, registered.RefreshToken)
	s.Require().NoError(err)

	identity, err := s.tokens.VerifyAccess(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(registered.User.ID, identity.UserID)
	s.Equal(registered.RefreshToken, *s.users.Slot(registered.User.ID))

	// Same refresh token keeps working
	_, err = s.svc.Refresh(s.ctx, registered.RefreshToken)
	s.NoError(err)
}

func (s *AuthServiceSuite) TestRefresh_RejectionsAreIndistinguishable() {
	registered := s.register("alice@example.com")
	ghost := s.register("ghost@example.com")
	s.users.Delete(ghost.User.ID)

	forged, err := SignToken(Identity{UserID: registered.User.ID, Email: "alice@example.com"}, []byte("wrong"), time.Hour, s.clock.Now())
	s.Require().NoError(err)

	tests := []struct {
		name  string
		token func() string
	}{
		{"missing", func() string { return "" }},
		{"garbage", func() string { return "garbage" }},
		{"access token", func() string { return registered.AccessToken }},
		{"forged signature", func() string { return forged }},
		{"unknown user", func() string { return ghost.RefreshToken }},
		{"expired", func() string {
			s.clock.t = s.clock.t.Add(8 * 24 * time.Hour)
			return registered.RefreshToken
		}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Refresh(s.ctx, tt.token())
			s.ErrorIs(err, apperrors.ErrInvalidRefreshToken)
			s.Equal("Invalid or expired refresh token", apperrors.GetErrorMessage(err, "fallback"))
		})
	}
}

func (s *AuthServiceSuite) TestLogout_RevokesRefresh() {
	registered := s.register("alice@example.com")

	s.Require().NoError(s.svc.Logout(s.ctx, registered.User.ID))
	s.Nil(s.users.Slot(registered.User.ID))

	_, err := s.svc.Refresh(s.ctx, registered.RefreshToken)
	s.ErrorIs(err, apperrors.ErrInvalidRefreshToken)

	// Access token stays valid until expiry
	_, err = s.tokens.VerifyAccess(registered.AccessToken)
	s.NoError(err)

	// Logging out twice is harmless
	s.NoError(s.svc.Logout(s.ctx, registered.User.ID))
}

func (s *AuthServiceSuite) TestLogout_MissingUser() {
	s.NoError(s.svc.Logout(s.ctx, "does-not-exist"))
}

func (s *AuthServiceSuite) TestMe() {
	registered := s.register("alice@example.com")

	me, err := s.svc.Me(s.ctx, registered.User.ID)
	s.Require().NoError(err)
	s.Equal(registered.User, *me)

	_, err = s.svc.Me(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrUserNotFound)
}

func (s *AuthServiceSuite) TestStoreFailuresAreInternal() {
	registered := s.register("alice@example.com")
	s.users.Err = apperrors.WrapError(apperrors.ErrInternal, errors.New("connection reset"))

	_, err := s.login("alice@example.com", strongPassword)
	s.True(apperrors.IsInternal(err))

	_, err = s.svc.Register(s.ctx, &dto.RegisterRequest{Email: "new@example.com", Password: strongPassword, Name: "N"})
	s.True(apperrors.IsInternal(err))

	_, err = s.svc.Refresh(s.ctx, registered.RefreshToken)
	s.True(apperrors.IsInternal(err))

	s.True(apperrors.IsInternal(s.svc.Logout(s.ctx, registered.User.ID)))
}

// racingStore lets another login land between reading the user and writing the slot.
type racingStore struct {
	*testutil.UserStore
	race func(user *model.User)
}

func (r *racingStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.UserStore.FindByEmail(ctx, email)
	if err == nil && r.race != nil {
		r.race(user)
	}
	return user, err
}

func (s *AuthServiceSuite) TestLogin_ConcurrentSessionStartConflicts() {
	registered := s.register("alice@example.com")

	winner := "token-from-a-concurrent-login"
	racing := &racingStore{
		UserStore: s.users,
		race: func(user *model.User) {
			s.Require().NoError(s.users.UpdateRefreshToken(s.ctx, user.ID, &winner))
		},
	}
	svc := NewAuthService(racing, s.tokens, WithHashCost(bcrypt.MinCost))

	_, err := svc.Login(s.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: strongPassword})
	s.ErrorIs(err, apperrors.ErrSessionConflict)
	s.Equal(winner, *s.users.Slot(registered.User.ID))

	// Without interference the next attempt succeeds
	racing.race = nil
	resp, err := svc.Login(s.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: strongPassword})
	s.Require().NoError(err)
	s.Equal(resp.RefreshToken, *s.users.Slot(registered.User.ID))
}
