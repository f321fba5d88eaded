package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/Payphone-Digital/taskflow/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// AccessVerifier resolves an access token to the identity it was issued for.
type AccessVerifier interface {
	VerifyAccess(token string) (ctxutil.Identity, error)
}

type JWTMiddleware struct {
	tokens  AccessVerifier
	metrics *metrics.Metrics
}

func NewJWTMiddleware(tokens AccessVerifier, m *metrics.Metrics) *JWTMiddleware {
	return &JWTMiddleware{
		tokens:  tokens,
		metrics: m,
	}
}

// RequireAuth verifies the bearer access token and attaches the identity to the
// request. It never touches the database.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, ok := bearerToken(c.GetHeader(constants.HeaderAuthorization))
		if !ok {
			m.metrics.IncAuthFailure(metrics.ReasonMissingToken)
			logger.WarnWithContext(ctx, "Missing or malformed Authorization header").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Log()
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAccessTokenMissing))
			return
		}

		identity, err := m.tokens.VerifyAccess(token)
		if err != nil {
			reason := metrics.ReasonTokenInvalid
			if errors.Is(err, apperrors.ErrTokenExpired) {
				reason = metrics.ReasonTokenExpired
			}
			m.metrics.IncAuthFailure(reason)
			logger.WarnWithContext(ctx, "Access token rejected").
				String("reason", reason).
				Path(c.Request.URL.Path).
				Err(err).
				Log()
			c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAccessTokenInvalid))
			return
		}

		c.Set(constants.GinKeyIdentity, identity)
		c.Request = c.Request.WithContext(ctxutil.WithIdentity(ctx, identity))

		logger.DebugWithContext(c.Request.Context(), "User authenticated").
			String("email", identity.Email).
			Log()

		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != constants.BearerScheme {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// CurrentIdentity returns the identity set by RequireAuth.
func CurrentIdentity(c *gin.Context) (ctxutil.Identity, bool) {
	value, exists := c.Get(constants.GinKeyIdentity)
	if !exists {
		return ctxutil.Identity{}, false
	}
	identity, ok := value.(ctxutil.Identity)
	return identity, ok
}
