package validation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Each pattern must match for a password to be accepted. The first character must come
// from the allowed set; later characters are unrestricted.
var passwordRules = []*regexp.Regexp{
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`\d`),
	regexp.MustCompile(`[` + regexp.QuoteMeta(constants.PasswordSpecialChars) + `]`),
	regexp.MustCompile(`^[A-Za-z\d` + regexp.QuoteMeta(constants.PasswordSpecialChars) + `]`),
}

// ValidatePassword reports whether s satisfies the character-class policy.
// Length is checked separately by the min tag.
func ValidatePassword(s string) bool {
	for _, rule := range passwordRules {
		if !rule.MatchString(s) {
			return false
		}
	}
	return true
}

func passwordValidator(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("password", passwordValidator); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

var registerOnce sync.Once

// RegisterGinValidators installs the custom tags on gin's default binding engine.
func RegisterGinValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		err = Register(v)
	})
	return err
}

// FormatErrors turns a binding error into the client-facing message. Multiple field
// failures are joined with ", ".
func FormatErrors(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			messages = append(messages, messageFor(fe))
		}
		return strings.Join(messages, ", ")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return constants.MsgInvalidJSONFormat
	}

	return constants.MsgInvalidRequest
}

func messageFor(fe validator.FieldError) string {
	if msgs := CustomMessage(fe.StructNamespace(), fe.StructField()); msgs != nil {
		if msg, ok := msgs[fe.Tag()]; ok {
			return msg
		}
	}
	return DefaultMessage(fe.Field(), fe.Tag(), fe.Param())
}
