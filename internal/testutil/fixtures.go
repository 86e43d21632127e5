// Package testutil provides deterministic helpers shared by package tests.
package testutil

import (
	"encoding/json"

	"github.com/roach88/surveysync/internal/survey"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// KioskDefinition returns a valid two-section definition with options and
// rules covering every source-resolution path.
func KioskDefinition() *survey.Definition {
	return &survey.Definition{
		Code:        "lobby-kiosk",
		Title:       "Lobby feedback",
		Description: "How was your visit?",
		Theme:       &survey.ThemeDef{Accent: "#0055ff", Panel: "#ffffff"},
		Style:       &survey.StyleDef{CSS: ".panel { padding: 1rem; }"},
		Status:      "Draft|Published",
		Sections: []survey.SectionDef{
			{
				Title:    "Visit",
				Order:    1,
				Columns:  Ptr(2),
				Settings: json.RawMessage(`{"background":"blue"}`),
				Questions: []survey.QuestionDef{
					{
						Key:      "reason",
						Order:    1,
						Type:     "single",
						Prompt:   "Why did you visit?",
						Required: true,
						Settings: json.RawMessage(`{"choices":[{"value":"meeting","label":"Meeting"},{"value":"delivery","label":"Delivery"}]}`),
						Options: []survey.OptionDef{
							{Value: "meeting", Label: "Meeting", Order: 1},
							{Value: "delivery", Label: "Delivery", Order: 2},
						},
					},
					{
						Key:    "wait",
						Order:  2,
						Type:   "text",
						Prompt: "How long did you wait?",
					},
				},
			},
			{
				Title: "Score",
				Order: 2,
				Questions: []survey.QuestionDef{
					{
						Key:      "nps",
						Order:    1,
						Type:     "nps_0_10",
						Prompt:   "Would you recommend us?",
						Required: true,
					},
					{
						Key:    "areas",
						Order:  2,
						Type:   "multi",
						Prompt: "What could improve?",
						Settings: json.RawMessage(`{"choices":[{"value":"speed","label":"Speed"},{"value":"staff","label":"Staff"}]}`),
						Options: []survey.OptionDef{
							{Value: "speed", Label: "Speed", Order: 1},
							{Value: "staff", Label: "Staff", Order: 2},
						},
					},
				},
			},
		},
		Rules: []survey.RuleDef{
			{SourceQuestionKey: Ptr("nps"), Condition: "nps < 7", Action: "show:areas"},
			{Condition: "reason == 'delivery'", Action: "skip:wait"},
		},
	}
}
