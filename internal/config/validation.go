package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	bridgeerrors "github.com/sufield/signbridge/internal/core/errors"
)

// newValidator returns a validator with the bridge's custom tags registered.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("samesite", validateSameSite)
	_ = validate.RegisterValidation("url_path", validateURLPath)
	_ = validate.RegisterValidation("cookie_name", validateCookieName)
	validate.RegisterStructValidation(validateCookiePolicy, CookieConfig{})
	return validate
}

// Validate checks c and reports every rejected field at once.
func Validate(c *Config) error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate configuration: %w", err)
	}
	out := &bridgeerrors.ConfigValidationError{}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, &bridgeerrors.ValidationError{
			Field:   fe.Namespace(),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "http_url":
		return "must be an http(s) URL"
	case "url_path":
		return "must be a path starting with /"
	case "samesite":
		return "must be one of Lax, Strict, None"
	case "samesite_secure":
		return "SameSite=None requires a secure cookie"
	case "cookie_name":
		return "must be a valid cookie name"
	case "nefield":
		return "must differ from " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "dir":
		return "must be an existing directory"
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}

func validateSameSite(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "lax", "strict", "none":
		return true
	}
	return false
}

func validateURLPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return strings.HasPrefix(p, "/") && !strings.ContainsAny(p, "?# \t")
}

func validateCookieName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	c := &http.Cookie{Name: name, Value: "x"}
	return c.Valid() == nil
}

// validateCookiePolicy enforces rules spanning several cookie fields.
func validateCookiePolicy(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(CookieConfig)
	if !ok {
		return
	}
	if c.SameSiteMode() == http.SameSiteNoneMode && !c.Secure {
		sl.ReportError(c.SameSite, "SameSite", "SameSite", "samesite_secure", "")
	}
}
