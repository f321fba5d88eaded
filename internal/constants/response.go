package constants

// Standard Response Field Keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldError   = "error"
)

// BuildErrorResponse builds the {"error": message} body used by every failure path.
func BuildErrorResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldError: message,
	}
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
