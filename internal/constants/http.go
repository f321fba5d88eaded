package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"
	HeaderForwardedFor  = "X-Forwarded-For"
	HeaderRealIP        = "X-Real-IP"
)

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// Common HTTP Error Messages
const (
	MsgInternalError      = "Internal server error"
	MsgAccessTokenMissing = "Access token required"
	MsgAccessTokenInvalid = "Invalid or expired access token"
	MsgRateLimited        = "Too many requests, please try again later"
)

// Operation-specific messages returned when an unexpected failure is hidden from the client.
const (
	MsgRegisterFailed   = "Failed to create account. Please try again."
	MsgLoginFailed      = "Failed to login. Please try again."
	MsgRefreshFailed    = "Failed to refresh token. Please try again."
	MsgLogoutFailed     = "Failed to logout. Please try again."
	MsgProfileFailed    = "Failed to fetch profile. Please try again."
	MsgFetchTasksFailed = "Failed to fetch tasks. Please try again."
	MsgFetchTaskFailed  = "Failed to fetch task. Please try again."
	MsgCreateTaskFailed = "Failed to create task. Please try again."
	MsgUpdateTaskFailed = "Failed to update task. Please try again."
	MsgDeleteTaskFailed = "Failed to delete task. Please try again."
	MsgToggleTaskFailed = "Failed to toggle task status. Please try again."
)

// HTTP Success Messages
const (
	MsgLoggedOut   = "Logged out successfully"
	MsgTaskDeleted = "Task deleted successfully"
)
