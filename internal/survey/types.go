package survey

import "encoding/json"

// Definition is the wire representation of a complete survey definition.
// It is both the inbound sync payload and the outbound projection.
type Definition struct {
	ID          string       `json:"id,omitempty"`
	Code        string       `json:"code"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Theme       *ThemeDef    `json:"theme,omitempty"`
	ScopedCSS   string       `json:"scopedCss,omitempty"`
	Style       *StyleDef    `json:"style,omitempty"`
	Version     int          `json:"version,omitempty"`
	Status      string       `json:"status,omitempty"` // "|"-delimited tokens, e.g. "Draft|Published"
	Sections    []SectionDef `json:"sections"`
	Rules       []RuleDef    `json:"rules"`
}

// ThemeDef carries the survey colour scheme.
type ThemeDef struct {
	Accent string `json:"accent,omitempty"`
	Panel  string `json:"panel,omitempty"`
}

// StyleDef carries survey-scoped CSS.
type StyleDef struct {
	CSS string `json:"css,omitempty"`
}

// SectionDef is a page of questions.
type SectionDef struct {
	ID        string          `json:"id,omitempty"`
	Title     string          `json:"title"`
	Order     int             `json:"order"`
	Columns   *int            `json:"columns,omitempty"` // nil means 1
	Settings  json.RawMessage `json:"settings,omitempty"`
	Questions []QuestionDef   `json:"questions"`
}

// QuestionDef is a single question inside a section.
type QuestionDef struct {
	ID       string          `json:"id,omitempty"`
	Key      string          `json:"key"`
	Order    int             `json:"order"`
	Type     string          `json:"type"`
	Prompt   string          `json:"prompt"`
	Required bool            `json:"required"`
	Settings json.RawMessage `json:"settings,omitempty"`
	Options  []OptionDef     `json:"options"`
}

// OptionDef is a selectable answer of a question.
type OptionDef struct {
	ID    string `json:"id,omitempty"`
	Value string `json:"value"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// RuleDef is a conditional directive attached to a source question.
type RuleDef struct {
	ID                string  `json:"id,omitempty"`
	SourceQuestionID  string  `json:"sourceQuestionId,omitempty"`
	SourceQuestionKey *string `json:"sourceQuestionKey"` // nil on output when the question is gone
	Condition         string  `json:"condition"`
	Action            string  `json:"action"`
}

// ColumnsOrDefault returns the declared column count, or 1 when absent.
func (s SectionDef) ColumnsOrDefault() int {
	if s.Columns == nil {
		return 1
	}
	return *s.Columns
}

// SourceKey returns the explicit source question key, or "" when absent.
func (r RuleDef) SourceKey() string {
	if r.SourceQuestionKey == nil {
		return ""
	}
	return *r.SourceQuestionKey
}

// CSS returns the survey CSS, preferring style.css over scopedCss.
func (d *Definition) CSS() string {
	if d.Style != nil && d.Style.CSS != "" {
		return d.Style.CSS
	}
	return d.ScopedCSS
}
