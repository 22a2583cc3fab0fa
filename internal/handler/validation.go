package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with app-specific rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a validator with BugMemo rules registered
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("folder_name", validateFolderName)
	v.RegisterValidation("image_path", validateImagePath)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateFolderName rejects names that are blank after trimming
func validateFolderName(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateImagePath rejects empty paths and embedded NUL bytes
func validateImagePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	return path != "" && !strings.ContainsRune(path, 0)
}
