package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"github.com/Payphone-Digital/taskflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

// respondError writes {"error": message}. Internal failures are logged with their
// cause and answered with fallback.
func respondError(c *gin.Context, ctx context.Context, err error, fallback string) {
	status := apperrors.ToHTTPStatus(err)
	if apperrors.IsInternal(err) {
		logger.ErrorWithContext(ctx, fallback).
			Err(err).
			Log()
	}
	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err, fallback)))
}

// respondBindError answers a failed ShouldBindJSON with the formatted validation messages.
func respondBindError(c *gin.Context, ctx context.Context, err error) {
	message := validation.FormatErrors(err)
	logger.WarnWithContext(ctx, "Invalid request body").
		String("reason", message).
		Log()
	c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(message))
}
