// Package projector builds the outbound definition of a persisted survey.
//
// ToDefinition is a pure read transform and never fails. The output order is
// deterministic so projections can be snapshot-tested:
//   - sections by (order, title)
//   - questions by (order, key), nested under their section
//   - options by (order, value), nested under their question
//   - rules in stored order
package projector

import (
	"cmp"
	"slices"

	"github.com/roach88/surveysync/internal/survey"
)

// ToDefinition projects graph into its wire form. Every collection in the
// result is non-nil. A rule whose source question no longer exists keeps its
// stored id and gets a nil SourceQuestionKey.
func ToDefinition(g *survey.EntityGraph) survey.Definition {
	if g == nil {
		g = survey.NewEntityGraph()
	}
	s := g.Survey

	def := survey.Definition{
		ID:          s.ID,
		Code:        s.Code,
		Title:       s.Title,
		Description: s.Description,
		Theme:       s.Theme.Def(),
		ScopedCSS:   s.CustomCSS,
		Style:       &survey.StyleDef{CSS: s.CustomCSS},
		Version:     s.Version,
		Status:      survey.StatusString(s.IsActive),
		Sections:    []survey.SectionDef{},
		Rules:       []survey.RuleDef{},
	}

	questionsBySection := make(map[string][]*survey.Question)
	for _, q := range g.Questions {
		questionsBySection[q.SectionID] = append(questionsBySection[q.SectionID], q)
	}
	optionsByQuestion := make(map[string][]*survey.Option)
	for _, o := range g.Options {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], o)
	}

	sections := slices.Clone(g.Sections)
	slices.SortStableFunc(sections, func(a, b *survey.Section) int {
		return cmpOr(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Title, b.Title))
	})

	for _, sec := range sections {
		columns := sec.Columns
		out := survey.SectionDef{
			ID:        sec.ID,
			Title:     sec.Title,
			Order:     sec.Order,
			Columns:   &columns,
			Settings:  survey.CloneRaw(sec.Settings),
			Questions: []survey.QuestionDef{},
		}

		questions := questionsBySection[sec.ID]
		slices.SortStableFunc(questions, func(a, b *survey.Question) int {
			return cmpOr(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Key, b.Key))
		})
		for _, q := range questions {
			out.Questions = append(out.Questions, projectQuestion(q, optionsByQuestion[q.ID]))
		}
		def.Sections = append(def.Sections, out)
	}

	keys := make(map[string]string, len(g.Questions))
	for _, q := range g.Questions {
		keys[q.ID] = q.Key
	}
	for _, r := range g.Rules {
		out := survey.RuleDef{
			ID:               r.ID,
			SourceQuestionID: r.SourceQuestionID,
			Condition:        r.Condition,
			Action:           r.Action,
		}
		if key, ok := keys[r.SourceQuestionID]; ok {
			out.SourceQuestionKey = &key
		}
		def.Rules = append(def.Rules, out)
	}

	return def
}

func projectQuestion(q *survey.Question, options []*survey.Option) survey.QuestionDef {
	out := survey.QuestionDef{
		ID:       q.ID,
		Key:      q.Key,
		Order:    q.Order,
		Type:     q.Type,
		Prompt:   q.Prompt,
		Required: q.Required,
		Settings: survey.CloneRaw(q.Settings),
		Options:  make([]survey.OptionDef, 0, len(options)),
	}

	slices.SortStableFunc(options, func(a, b *survey.Option) int {
		return cmpOr(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Value, b.Value))
	})
	for _, o := range options {
		out.Options = append(out.Options, survey.OptionDef{
			ID:    o.ID,
			Value: o.Value,
			Label: o.Label,
			Order: o.Order,
		})
	}
	return out
}

// DanglingRules returns the rules whose source question is missing from g.
func DanglingRules(g *survey.EntityGraph) []*survey.Rule {
	var out []*survey.Rule
	for _, r := range g.Rules {
		if g.QuestionByID(r.SourceQuestionID) == nil {
			out = append(out, r)
		}
	}
	return out
}

// cmpOr mirrors cmp.Or (Go 1.22+): it returns the first of its arguments
// that is not the zero value, or the zero value if all are zero.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
