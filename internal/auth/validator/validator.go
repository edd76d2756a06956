// Package validator registers auth-specific rules on the shared validator.
package validator

import (
	"unicode"

	"consulting_leads_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// PasswordPolicy describes the password requirements for error messages.
const PasswordPolicy = "Password must be at least 12 characters and include: uppercase letter, lowercase letter, number, and special character"

const minPasswordLength = 12

// Register adds the strongpassword rule to v.
func Register(v *validator.Validator) error {
	return v.RegisterValidation("strongpassword", validateStrongPassword)
}

func validateStrongPassword(fl playground.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword checks for password complexity.
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
