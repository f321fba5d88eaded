package handler

import (
	"net/http"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/dto"
	"github.com/Payphone-Digital/taskflow/internal/middleware"
	"github.com/Payphone-Digital/taskflow/internal/service"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates an account and opens a session
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, ctx, err)
		return
	}

	response, err := h.authService.Register(ctx, &req)
	if err != nil {
		respondError(c, ctx, err, constants.MsgRegisterFailed)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, ctx, err)
		return
	}

	response, err := h.authService.Login(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Err(err).
			Log()
		respondError(c, ctx, err, constants.MsgLoginFailed)
		return
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		String("user_id", response.User.ID).
		Log()

	c.JSON(http.StatusOK, response)
}

// Refresh issues a new access token. A missing or unreadable body is treated as an
// absent refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Refresh")

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.RefreshToken = ""
	}

	response, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		respondError(c, ctx, err, constants.MsgRefreshFailed)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout clears the caller's refresh slot
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Logout")

	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAccessTokenMissing))
		return
	}

	if err := h.authService.Logout(ctx, identity.UserID); err != nil {
		respondError(c, ctx, err, constants.MsgLogoutFailed)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLoggedOut))
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Me")

	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgAccessTokenMissing))
		return
	}

	user, err := h.authService.Me(ctx, identity.UserID)
	if err != nil {
		respondError(c, ctx, err, constants.MsgProfileFailed)
		return
	}

	c.JSON(http.StatusOK, dto.MeResponse{User: *user})
}
