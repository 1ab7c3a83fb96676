// Package validation wraps JSON-schema validation for inbound payloads.
package validation

import (
	"regexp"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (r *ValidationResult) ErrorStrings() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Field != "" && e.Field != "(root)" {
			out = append(out, e.Field+": "+e.Message)
		} else {
			out = append(out, e.Message)
		}
	}
	return out
}

// ValidateAgainstSchema checks a decoded JSON document against a schema
// string. Schema compile failures are reported as a validation error
// rather than a panic; schemas are package constants and covered by tests.
func ValidateAgainstSchema(doc map[string]interface{}, schemaJSON string) *ValidationResult {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Message: err.Error()}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Valid: false}
	for _, resErr := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   resErr.Field(),
			Message: resErr.Description(),
		})
	}
	return out
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail applies the same address pattern on client and server.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
