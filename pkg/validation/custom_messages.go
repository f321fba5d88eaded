package validation

import "github.com/Payphone-Digital/taskflow/internal/constants"

// customValidationMessages is keyed by struct namespace ("Type.Field") or by bare field
// name; the namespaced entry wins.
var customValidationMessages = map[string]map[string]string{
	"Email": {
		"required": constants.MsgInvalidEmail,
		"email":    constants.MsgInvalidEmail,
	},
	"Password": {
		"required": constants.MsgPasswordRequired,
		"min":      constants.MsgPasswordTooShort,
		"max":      constants.MsgPasswordTooLong,
		"password": constants.MsgPasswordWeak,
	},
	"Name": {
		"required": constants.MsgNameRequired,
		"notblank": constants.MsgNameRequired,
	},
	"Title": {
		"required": constants.MsgTitleRequired,
		"notblank": constants.MsgTitleRequired,
	},
	"UpdateTaskRequest.Title": {
		"notblank": constants.MsgTitleEmpty,
	},
	"Status": {
		"oneof": constants.MsgInvalidStatus,
	},
}

func CustomMessage(namespace, field string) map[string]string {
	if msgs, ok := customValidationMessages[namespace]; ok {
		return msgs
	}
	return customValidationMessages[field]
}
