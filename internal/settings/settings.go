// Package settings validates the type-specific settings blob of a question.
//
// Validation is stateless and looks at one question at a time. It is a gate
// for the admin boundary; the sync engine only runs it when explicitly
// configured to (see syncer.WithSettingsCheck).
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Settings validation error codes (E200-E299)
const (
	ErrMalformedJSON   = "E200" // settings present but not JSON
	ErrNotObject       = "E201" // settings must be a JSON object
	ErrNoChoices       = "E202" // choice types need a non-empty choices array
	ErrInvalidChoice   = "E203" // choice element missing value or label
	ErrFixedScale      = "E204" // NPS scale cannot be customized
	ErrMatrixShape     = "E205" // matrix needs rows and columns
	ErrMissingHTML     = "E206" // static HTML needs html
	ErrMissingImageURL = "E207" // image needs url
)

// Family groups question types that share a settings shape.
type Family int

const (
	FamilyOther Family = iota
	FamilyChoice
	FamilyNPS
	FamilyMatrix
	FamilyHTML
	FamilyImage
)

var families = map[string]Family{
	"single":          FamilyChoice,
	"single_choice":   FamilyChoice,
	"single-choice":   FamilyChoice,
	"radio":           FamilyChoice,
	"select":          FamilyChoice,
	"dropdown":        FamilyChoice,
	"multi":           FamilyChoice,
	"multi_choice":    FamilyChoice,
	"multi-choice":    FamilyChoice,
	"multiple":        FamilyChoice,
	"multiple_choice": FamilyChoice,
	"checkbox":        FamilyChoice,
	"nps":             FamilyNPS,
	"nps_0_10":        FamilyNPS,
	"nps-0-10":        FamilyNPS,
	"matrix":          FamilyMatrix,
	"grid":            FamilyMatrix,
	"html":            FamilyHTML,
	"static_html":     FamilyHTML,
	"static-html":     FamilyHTML,
	"image":           FamilyImage,
}

// FamilyOf classifies a question type. Matching is case-insensitive.
func FamilyOf(questionType string) Family {
	return families[strings.ToLower(strings.TrimSpace(questionType))]
}

// Result is the outcome of validating one settings blob.
type Result struct {
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Malformed bool   `json:"malformed,omitempty"` // settings were not parseable JSON
}

// Error implements the error interface for invalid results.
func (r Result) Error() string {
	return fmt.Sprintf("[%s] %s", r.Code, r.Message)
}

var validResult = Result{Valid: true}

func invalid(code, format string, args ...any) Result {
	return Result{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validate checks settings against the structural requirements of
// questionType. Blank settings count as absent.
func Validate(questionType string, settings json.RawMessage) Result {
	var doc any
	present := len(bytes.TrimSpace(settings)) > 0
	if present {
		if err := json.Unmarshal(settings, &doc); err != nil {
			r := invalid(ErrMalformedJSON, "settings are not valid JSON: %v", err)
			r.Malformed = true
			return r
		}
	}

	switch FamilyOf(questionType) {
	case FamilyChoice:
		return validateChoice(doc)
	case FamilyNPS:
		return validateNPS(doc)
	case FamilyMatrix:
		return validateMatrix(doc)
	case FamilyHTML:
		return requireString(doc, "html", ErrMissingHTML, "static HTML")
	case FamilyImage:
		return requireString(doc, "url", ErrMissingImageURL, "image")
	default:
		return validResult
	}
}

// ValidateString is Validate for callers holding settings as a string.
func ValidateString(questionType string, settings *string) Result {
	if settings == nil {
		return Validate(questionType, nil)
	}
	return Validate(questionType, json.RawMessage(*settings))
}

func validateChoice(doc any) Result {
	obj, isObj := doc.(map[string]any)
	if !isObj {
		return invalid(ErrNotObject, "choice settings must be a JSON object with a choices array")
	}
	choices, _ := obj["choices"].([]any)
	if len(choices) == 0 {
		return invalid(ErrNoChoices, "choice settings require a non-empty choices array")
	}
	for i, c := range choices {
		choice, isObj := c.(map[string]any)
		if !isObj {
			return invalid(ErrInvalidChoice, "choices[%d] must be an object", i)
		}
		if !nonBlankString(choice["value"]) {
			return invalid(ErrInvalidChoice, "choices[%d].value must be a non-blank string", i)
		}
		if !nonBlankString(choice["label"]) {
			return invalid(ErrInvalidChoice, "choices[%d].label must be a non-blank string", i)
		}
	}
	return validResult
}

func validateNPS(doc any) Result {
	obj, isObj := doc.(map[string]any)
	if !isObj {
		return validResult
	}
	for _, field := range []string{"choices", "options"} {
		if arr, _ := obj[field].([]any); len(arr) > 0 {
			return invalid(ErrFixedScale, "NPS questions use a fixed 0-10 scale and cannot declare %s", field)
		}
	}
	return validResult
}

func validateMatrix(doc any) Result {
	obj, isObj := doc.(map[string]any)
	if !isObj {
		return invalid(ErrNotObject, "matrix settings must be a JSON object with rows and columns")
	}
	for _, field := range []string{"rows", "columns"} {
		if arr, _ := obj[field].([]any); len(arr) == 0 {
			return invalid(ErrMatrixShape, "matrix settings require a non-empty %s array", field)
		}
	}
	return validResult
}

func requireString(doc any, field, code, kind string) Result {
	obj, isObj := doc.(map[string]any)
	if !isObj || !nonBlankString(obj[field]) {
		return invalid(code, "%s settings require a non-blank %s string", kind, field)
	}
	return validResult
}

func nonBlankString(v any) bool {
	s, isStr := v.(string)
	return isStr && strings.TrimSpace(s) != ""
}
