package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator は拡張バリデーション機能を提供
type CustomValidator struct {
	validator           *validator.Validate
	namePattern         *regexp.Regexp
	sqlInjectionPattern *regexp.Regexp
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	cv := &CustomValidator{
		validator:           v,
		namePattern:         regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\s\-'.&]*$`),
		sqlInjectionPattern: regexp.MustCompile(`(?i)(\bunion\s+select\b|\bselect\s+.*\bfrom\b|\binsert\s+into\b|\bdelete\s+from\b|\bdrop\s+table\b|<script|--|/\*)`),
	}

	// カスタムバリデーションルールを登録
	v.RegisterValidation("safe_name", cv.validateSafeName)
	v.RegisterValidation("no_sql_injection", cv.validateNoSQLInjection)

	return cv
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		var validationErrors []ValidationError
		for _, fieldErr := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Message: cv.generateErrorMessage(fieldErr),
			})
		}
		return ValidationErrors{Errors: validationErrors}
	}
	return nil
}

// ValidateID IDパラメータの検証（正の整数のみ）
func ValidateID(value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ID must be a positive number: %q", value)
	}
	return id, nil
}

// SanitizeInput 前後の空白を除去し連続する空白をまとめる
func (cv *CustomValidator) SanitizeInput(input string) string {
	sanitized := strings.TrimSpace(input)
	sanitized = regexp.MustCompile(`\s+`).ReplaceAllString(sanitized, " ")
	return sanitized
}

func (cv *CustomValidator) validateSafeName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return cv.namePattern.MatchString(value) && !cv.sqlInjectionPattern.MatchString(value)
}

func (cv *CustomValidator) validateNoSQLInjection(fl validator.FieldLevel) bool {
	return !cv.sqlInjectionPattern.MatchString(fl.Field().String())
}

func (cv *CustomValidator) generateErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "safe_name":
		return fmt.Sprintf("%s contains invalid characters", err.Field())
	case "no_sql_injection":
		return fmt.Sprintf("%s contains disallowed sequences", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
