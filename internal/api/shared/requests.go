package shared

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError names one violated field of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages maps "<json field>.<tag>" to the message reported to clients.
var fieldMessages = map[string]string{
	"title.required":       "Title is required",
	"title.min":            "Title is required",
	"title.max":            "Title must be less than 200 characters",
	"description.max":      "Description must be less than 2000 characters",
	"priority.required":    "Invalid priority",
	"priority.oneof":       "Invalid priority",
	"environment.required": "Invalid environment",
	"environment.oneof":    "Invalid environment",
	"assignee.max":         "Assignee must be less than 100 characters",
	"status.oneof":         "Invalid status",
	"name.required":        "Name is required",
	"name.max":             "Name must be less than 200 characters",
	"version.required":     "Version is required",
	"version.max":          "Version must be less than 50 characters",
	"commit_sha.required":  "Commit SHA is required",
	"commit_sha.min":       "Invalid commit SHA",
	"commit_sha.max":       "Invalid commit SHA",
	"branch.required":      "Branch is required",
	"branch.max":           "Branch must be less than 100 characters",
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates v against its struct tags and returns one
// FieldError per violated field, or nil when v is valid.
func ValidateRequest(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "Invalid request"}}
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		fieldErrors = append(fieldErrors, FieldError{Field: field, Message: fieldMessage(field, fe.Tag())})
	}
	return fieldErrors
}

func fieldMessage(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	return "Invalid " + strings.ReplaceAll(field, "_", " ")
}

// Trim trims surrounding whitespace from every non-nil string pointer.
func Trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// Escape HTML-escapes every non-nil string pointer in place.
func Escape(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = html.EscapeString(*f)
		}
	}
}
