package constants

// Application Information
const (
	AppName    = "taskflow"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limit keys. The Redis store prepends RateLimitKeyPrefix to every scope key.
const (
	RateLimitKeyPrefix = "taskflow:ratelimit:"
	RateLimitKeyAuth   = "auth:"
)
