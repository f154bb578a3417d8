package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	usecasecontract "github.com/mikiasgoitom/Parley/internal/usecase/contract"
)

// AppValidator implements the usecase.IValidator interface.
type AppValidator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator that implements the usecase.IValidator interface.
func NewValidator() usecasecontract.IValidator {
	v := validator.New()
	return &AppValidator{validate: v}
}

// ValidateUsername checks username length and characters.
func (av *AppValidator) ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	if !isUsername(username) {
		return fmt.Errorf("username may only contain lowercase letters, digits, '.' and '_'")
	}
	return nil
}

// ValidateEmail checks if the email format is valid.
func (av *AppValidator) ValidateEmail(email string) error {
	return av.validate.Var(email, "required,email")
}

// ValidatePhone checks if the phone number is in E.164 form.
func (av *AppValidator) ValidatePhone(phone string) error {
	return av.validate.Var(phone, "required,e164")
}

// RegisterCustomValidators registers custom validation functions with the Gin validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("username", usernameFL)
	}
}

// isUsername checks that the string consists of lowercase letters, digits,
// dots and underscores.
func isUsername(s string) bool {
	for _, char := range s {
		if unicode.IsLower(char) || unicode.IsDigit(char) {
			continue
		}
		if strings.ContainsRune("._", char) {
			continue
		}
		return false
	}
	return true
}

func usernameFL(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) >= 3 && len(s) <= 32 && isUsername(s)
}
