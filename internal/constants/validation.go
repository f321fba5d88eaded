package constants

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

// PasswordSpecialChars is the set of accepted special characters in passwords.
const PasswordSpecialChars = "@$!%*?&"

// Validation messages
const (
	MsgInvalidEmail      = "Valid email is required"
	MsgPasswordTooShort  = "Password must be at least 8 characters"
	MsgPasswordWeak      = "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character (@$!%*?&)"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
	MsgNameRequired      = "Name is required"
	MsgTitleRequired     = "Title is required"
	MsgTitleEmpty        = "Title cannot be empty"
	MsgInvalidStatus     = "Invalid status"
	MsgInvalidTaskID     = "Invalid task ID"
	MsgInvalidPage       = "Invalid page number"
	MsgInvalidLimit      = "Invalid limit"
	MsgInvalidRequest    = "Invalid request"
	MsgInvalidJSONFormat = "Invalid JSON format"
)
