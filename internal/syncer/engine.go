package syncer

import (
	"fmt"
	"strings"

	"github.com/roach88/surveysync/internal/survey"
	"github.com/roach88/surveysync/internal/validate"
)

// Engine merges survey definitions into entity graphs.
type Engine struct {
	ids           IDGenerator
	settingsCheck bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides the id generator (UUIDv7 by default).
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithSettingsCheck makes the per-question settings validator part of
// validation, so invalid settings reject the whole definition.
func WithSettingsCheck(enabled bool) Option {
	return func(e *Engine) {
		e.settingsCheck = enabled
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate returns every violation that would make Merge reject def.
// expectedID is the id of the survey the definition is addressed to.
func (e *Engine) Validate(def *survey.Definition, expectedID string) []validate.ValidationError {
	errs := validate.Validate(def, expectedID)
	if e.settingsCheck {
		errs = append(errs, validate.ValidateSettings(def)...)
	}
	return errs
}

// Merge reconciles def against graph and returns the resulting graph.
//
// A nil graph is treated as a brand-new survey. On a validation failure the
// graph is returned unmodified together with a *ValidationFailure. On
// success the graph is mutated in place: matched rows keep their identity
// and have every field overwritten, unmatched incoming items become new rows,
// and unclaimed persisted rows are removed with their dependents.
func (e *Engine) Merge(def *survey.Definition, graph *survey.EntityGraph) (*survey.EntityGraph, MergeReport, error) {
	if graph == nil {
		graph = survey.NewEntityGraph()
	}

	if errs := e.Validate(def, graph.Survey.ID); len(errs) > 0 {
		return graph, MergeReport{}, &ValidationFailure{Errors: errs}
	}

	m := &merge{
		engine: e,
		def:    def,
		graph:  graph,
		index:  survey.NewQuestionIndex(def),
		byKey:  make(map[string]*survey.Question),
	}
	m.mergeSurvey()
	m.mergeSections()
	if err := m.mergeRules(); err != nil {
		return graph, MergeReport{}, err
	}
	m.prune()

	m.report.SurveyID = graph.Survey.ID
	return graph, m.report, nil
}

// merge holds the state of one Merge pass.
type merge struct {
	engine *Engine
	def    *survey.Definition
	graph  *survey.EntityGraph
	index  survey.QuestionIndex
	report MergeReport

	sections  *resolver[survey.Section]
	questions *resolver[survey.Question]
	options   map[*survey.Option]bool // claimed options, across all questions

	byKey map[string]*survey.Question // folded definition key -> merged row
}

func (m *merge) newID() string {
	return m.engine.ids.Generate()
}

func (m *merge) mergeSurvey() {
	s := &m.graph.Survey
	if s.ID == "" {
		if id := strings.TrimSpace(m.def.ID); id != "" {
			s.ID = id
		} else {
			s.ID = m.newID()
		}
		m.report.SurveyCreated = true
	}

	s.Code = m.def.Code
	s.Title = m.def.Title
	s.Description = m.def.Description
	s.Theme = survey.ThemeFromDef(m.def.Theme)
	s.CustomCSS = m.def.CSS()
	if strings.TrimSpace(m.def.Status) != "" {
		s.IsActive = survey.ParseStatus(m.def.Status)
	}
	if m.def.Version > 0 {
		s.Version = m.def.Version
	}
}

func (m *merge) mergeSections() {
	m.sections = sectionResolver(m.graph.Sections)
	m.questions = questionResolver(m.graph.Questions)
	m.options = make(map[*survey.Option]bool)

	var sectionIDs, questionIDs []string
	for _, sec := range m.def.Sections {
		sectionIDs = append(sectionIDs, sec.ID)
		for _, q := range sec.Questions {
			questionIDs = append(questionIDs, q.ID)
		}
	}
	m.sections.reserve(sectionIDs)
	m.questions.reserve(questionIDs)

	for _, in := range m.def.Sections {
		sec := m.sections.resolve(strings.TrimSpace(in.ID), in.Title)
		if sec == nil {
			sec = &survey.Section{ID: m.newID()}
			m.sections.claim(sec)
			m.graph.Sections = append(m.graph.Sections, sec)
			m.report.Sections.Created++
		} else {
			m.report.Sections.Matched++
		}

		sec.SurveyID = m.graph.Survey.ID
		sec.Title = in.Title
		sec.Order = in.Order
		sec.Columns = max(1, in.ColumnsOrDefault())
		sec.Settings = survey.CloneRaw(in.Settings)

		m.mergeQuestions(sec, in.Questions)
	}
}

func (m *merge) mergeQuestions(sec *survey.Section, incoming []survey.QuestionDef) {
	for _, in := range incoming {
		q := m.questions.resolve(strings.TrimSpace(in.ID), in.Key)
		if q == nil {
			q = &survey.Question{ID: m.newID()}
			m.questions.claim(q)
			m.graph.Questions = append(m.graph.Questions, q)
			m.report.Questions.Created++
		} else {
			m.report.Questions.Matched++
		}

		q.SurveyID = m.graph.Survey.ID
		q.SectionID = sec.ID
		q.Key = in.Key
		q.Type = in.Type
		q.Prompt = in.Prompt
		q.Required = in.Required
		q.Order = in.Order
		q.Settings = survey.CloneRaw(in.Settings)

		m.byKey[survey.FoldKey(in.Key)] = q
		m.mergeOptions(q, in.Options)
	}
}

func (m *merge) mergeOptions(q *survey.Question, incoming []survey.OptionDef) {
	var scoped []*survey.Option
	for _, o := range m.graph.Options {
		if o.QuestionID == q.ID {
			scoped = append(scoped, o)
		}
	}
	options := optionResolver(scoped)
	optionIDs := make([]string, len(incoming))
	for i, in := range incoming {
		optionIDs[i] = in.ID
	}
	options.reserve(optionIDs)

	for _, in := range incoming {
		o := options.resolve(strings.TrimSpace(in.ID), in.Value)
		if o == nil {
			o = &survey.Option{ID: m.newID(), QuestionID: q.ID}
			m.graph.Options = append(m.graph.Options, o)
			m.report.Options.Created++
		} else {
			m.report.Options.Matched++
		}
		m.options[o] = true

		o.Value = in.Value
		o.Label = in.Label
		o.Order = in.Order
	}
}

func (m *merge) mergeRules() error {
	rules := ruleResolver(m.graph.Rules)

	for i, in := range m.def.Rules {
		key, ok := m.index.Resolve(in)
		source := m.byKey[key]
		if !ok || source == nil {
			// Validation resolves rules with the same index, so this is unreachable
			// for a definition that passed Validate.
			return fmt.Errorf("merge rule %d: source question not resolved", i)
		}

		r := rules.resolve(strings.TrimSpace(in.ID), "")
		if r == nil {
			r = &survey.Rule{ID: m.newID()}
			rules.claim(r)
			m.graph.Rules = append(m.graph.Rules, r)
			m.report.Rules.Created++
		} else {
			m.report.Rules.Matched++
		}

		r.SurveyID = m.graph.Survey.ID
		r.SourceQuestionID = source.ID
		r.Condition = in.Condition
		r.Action = in.Action
	}

	kept := make([]*survey.Rule, 0, len(m.graph.Rules))
	for _, r := range m.graph.Rules {
		if rules.isClaimed(r) {
			kept = append(kept, r)
		} else {
			m.report.Rules.Deleted++
		}
	}
	m.graph.Rules = kept
	return nil
}

// prune removes every unclaimed row. Removing a section removes its
// questions; removing a question removes its options and rules.
func (m *merge) prune() {
	removedSections := make(map[string]bool)
	keptSections := make([]*survey.Section, 0, len(m.graph.Sections))
	for _, s := range m.graph.Sections {
		if m.sections.isClaimed(s) {
			keptSections = append(keptSections, s)
		} else {
			removedSections[s.ID] = true
			m.report.Sections.Deleted++
		}
	}
	m.graph.Sections = keptSections

	removedQuestions := make(map[string]bool)
	keptQuestions := make([]*survey.Question, 0, len(m.graph.Questions))
	for _, q := range m.graph.Questions {
		// Claimed questions were re-parented to a surviving section above.
		if m.questions.isClaimed(q) && !removedSections[q.SectionID] {
			keptQuestions = append(keptQuestions, q)
		} else {
			removedQuestions[q.ID] = true
			m.report.Questions.Deleted++
		}
	}
	m.graph.Questions = keptQuestions

	keptOptions := make([]*survey.Option, 0, len(m.graph.Options))
	for _, o := range m.graph.Options {
		if m.options[o] && !removedQuestions[o.QuestionID] {
			keptOptions = append(keptOptions, o)
		} else {
			m.report.Options.Deleted++
		}
	}
	m.graph.Options = keptOptions

	keptRules := make([]*survey.Rule, 0, len(m.graph.Rules))
	for _, r := range m.graph.Rules {
		if !removedQuestions[r.SourceQuestionID] {
			keptRules = append(keptRules, r)
		} else {
			m.report.Rules.Deleted++
		}
	}
	m.graph.Rules = keptRules
}
