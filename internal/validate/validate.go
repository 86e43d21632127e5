// Package validate checks an incoming survey definition for structural and
// referential correctness before it is merged.
package validate

import (
	"fmt"
	"strings"

	"github.com/roach88/surveysync/internal/settings"
	"github.com/roach88/surveysync/internal/survey"
)

// Validation error codes (E100-E199)
const (
	// Survey errors (E100-E104)
	ErrNilDefinition = "E100" // no definition supplied
	ErrCodeBlank     = "E101" // survey code is required
	ErrTitleBlank    = "E102" // survey title is required
	ErrIDMismatch    = "E103" // definition id differs from the addressed survey
	ErrNoSections    = "E104" // at least one section required

	// Section errors (E105-E109)
	ErrSectionTitleBlank = "E105" // section title is required
	ErrSectionColumns    = "E106" // columns must be >= 1
	ErrSectionEmpty      = "E107" // at least one question per section

	// Question errors (E110-E119)
	ErrQuestionKeyBlank    = "E110" // question key is required
	ErrDuplicateKey        = "E111" // question key repeated (case-insensitive)
	ErrQuestionTypeBlank   = "E112" // question type is required
	ErrQuestionPromptBlank = "E113" // question prompt is required
	ErrQuestionSettings    = "E114" // settings rejected by the settings validator

	// Option errors (E120-E129)
	ErrOptionValueBlank = "E120" // option value is required
	ErrDuplicateValue   = "E121" // option value repeated within a question
	ErrOptionLabelBlank = "E122" // option label is required

	// Rule errors (E130-E139)
	ErrRuleConditionBlank = "E130" // rule condition is required
	ErrRuleActionBlank    = "E131" // rule action is required
	ErrRuleSource         = "E132" // rule source question cannot be resolved
)

// ValidationError represents one definition violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Messages renders violations as plain human-readable strings, in order.
func Messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// Validate checks a definition and returns every violation found (does not
// fail fast). An empty result means the definition may be merged.
//
// When expectedID is non-empty and the definition carries an explicit id,
// the two must match.
func Validate(def *survey.Definition, expectedID string) []ValidationError {
	if def == nil {
		return []ValidationError{{
			Field:   "definition",
			Message: "definition is required",
			Code:    ErrNilDefinition,
		}}
	}

	var errs []ValidationError

	if blank(def.Code) {
		errs = append(errs, ValidationError{
			Field:   "code",
			Message: "survey code is required",
			Code:    ErrCodeBlank,
		})
	}
	if blank(def.Title) {
		errs = append(errs, ValidationError{
			Field:   "title",
			Message: "survey title is required",
			Code:    ErrTitleBlank,
		})
	}

	expectedID = strings.TrimSpace(expectedID)
	if id := strings.TrimSpace(def.ID); expectedID != "" && id != "" && id != expectedID {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("definition id %q does not match survey id %q", id, expectedID),
			Code:    ErrIDMismatch,
		})
	}

	if len(def.Sections) == 0 {
		errs = append(errs, ValidationError{
			Field:   "sections",
			Message: "at least one section is required",
			Code:    ErrNoSections,
		})
	}

	// Keys are unique across the whole survey, not per section
	seenKeys := make(map[string]bool)

	for i, sec := range def.Sections {
		errs = append(errs, validateSection(i, sec, seenKeys)...)
	}

	ix := survey.NewQuestionIndex(def)
	for i, rule := range def.Rules {
		errs = append(errs, validateRule(i, rule, ix)...)
	}

	return errs
}

func validateSection(i int, sec survey.SectionDef, seenKeys map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("sections[%d]", i)

	if blank(sec.Title) {
		errs = append(errs, ValidationError{
			Field:   field + ".title",
			Message: fmt.Sprintf("section %d title is required", i+1),
			Code:    ErrSectionTitleBlank,
		})
	}
	if sec.ColumnsOrDefault() < 1 {
		errs = append(errs, ValidationError{
			Field:   field + ".columns",
			Message: fmt.Sprintf("section %q columns must be at least 1, got %d", sectionName(i, sec), sec.ColumnsOrDefault()),
			Code:    ErrSectionColumns,
		})
	}
	if len(sec.Questions) == 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".questions",
			Message: fmt.Sprintf("section %q must contain at least one question", sectionName(i, sec)),
			Code:    ErrSectionEmpty,
		})
	}

	for j, q := range sec.Questions {
		errs = append(errs, validateQuestion(fmt.Sprintf("%s.questions[%d]", field, j), q, seenKeys)...)
	}
	return errs
}

func validateQuestion(field string, q survey.QuestionDef, seenKeys map[string]bool) []ValidationError {
	var errs []ValidationError

	if blank(q.Key) {
		errs = append(errs, ValidationError{
			Field:   field + ".key",
			Message: fmt.Sprintf("question key is required (%s)", field),
			Code:    ErrQuestionKeyBlank,
		})
	} else {
		key := survey.FoldKey(q.Key)
		if seenKeys[key] {
			errs = append(errs, ValidationError{
				Field:   field + ".key",
				Message: fmt.Sprintf("duplicate question key %q", q.Key),
				Code:    ErrDuplicateKey,
			})
		}
		seenKeys[key] = true
	}

	if blank(q.Type) {
		errs = append(errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("question %q type is required", q.Key),
			Code:    ErrQuestionTypeBlank,
		})
	}
	if blank(q.Prompt) {
		errs = append(errs, ValidationError{
			Field:   field + ".prompt",
			Message: fmt.Sprintf("question %q prompt is required", q.Key),
			Code:    ErrQuestionPromptBlank,
		})
	}

	seenValues := make(map[string]bool)
	for k, opt := range q.Options {
		optField := fmt.Sprintf("%s.options[%d]", field, k)
		if blank(opt.Value) {
			errs = append(errs, ValidationError{
				Field:   optField + ".value",
				Message: fmt.Sprintf("question %q option %d value is required", q.Key, k+1),
				Code:    ErrOptionValueBlank,
			})
		} else {
			value := survey.FoldKey(opt.Value)
			if seenValues[value] {
				errs = append(errs, ValidationError{
					Field:   optField + ".value",
					Message: fmt.Sprintf("duplicate option value %q in question %q", opt.Value, q.Key),
					Code:    ErrDuplicateValue,
				})
			}
			seenValues[value] = true
		}
		if blank(opt.Label) {
			errs = append(errs, ValidationError{
				Field:   optField + ".label",
				Message: fmt.Sprintf("question %q option %d label is required", q.Key, k+1),
				Code:    ErrOptionLabelBlank,
			})
		}
	}
	return errs
}

func validateRule(i int, rule survey.RuleDef, ix survey.QuestionIndex) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("rules[%d]", i)

	if blank(rule.Condition) {
		errs = append(errs, ValidationError{
			Field:   field + ".condition",
			Message: fmt.Sprintf("rule %d condition is required", i+1),
			Code:    ErrRuleConditionBlank,
		})
	}
	if blank(rule.Action) {
		errs = append(errs, ValidationError{
			Field:   field + ".action",
			Message: fmt.Sprintf("rule %d action is required", i+1),
			Code:    ErrRuleActionBlank,
		})
	}
	if _, ok := ix.Resolve(rule); !ok {
		errs = append(errs, ValidationError{
			Field:   field + ".sourceQuestion",
			Message: fmt.Sprintf("rule %d source question cannot be resolved to a question of this survey", i+1),
			Code:    ErrRuleSource,
		})
	}
	return errs
}

// ValidateSettings runs the settings validator over every question of the
// definition. It is not part of Validate; callers opt in.
func ValidateSettings(def *survey.Definition) []ValidationError {
	if def == nil {
		return nil
	}
	var errs []ValidationError
	for i, sec := range def.Sections {
		for j, q := range sec.Questions {
			res := settings.Validate(q.Type, q.Settings)
			if res.Valid {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("sections[%d].questions[%d].settings", i, j),
				Message: fmt.Sprintf("question %q settings: %s", q.Key, res.Message),
				Code:    ErrQuestionSettings,
			})
		}
	}
	return errs
}

func sectionName(i int, sec survey.SectionDef) string {
	if blank(sec.Title) {
		return fmt.Sprintf("#%d", i+1)
	}
	return sec.Title
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
