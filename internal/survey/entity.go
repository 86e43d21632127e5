package survey

import "encoding/json"

// Survey is the persisted root of a survey graph.
type Survey struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       Theme  `json:"theme"`
	CustomCSS   string `json:"custom_css"`
	IsActive    bool   `json:"is_active"`
	Version     int    `json:"version"`
}

// Section is a persisted survey section.
type Section struct {
	ID       string          `json:"id"`
	SurveyID string          `json:"survey_id"`
	Title    string          `json:"title"`
	Order    int             `json:"order"`
	Columns  int             `json:"columns"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Question is a persisted question. SectionID is empty only transiently.
type Question struct {
	ID        string          `json:"id"`
	SurveyID  string          `json:"survey_id"`
	SectionID string          `json:"section_id"`
	Key       string          `json:"key"`
	Type      string          `json:"type"`
	Prompt    string          `json:"prompt"`
	Required  bool            `json:"required"`
	Order     int             `json:"order"`
	Settings  json.RawMessage `json:"settings,omitempty"`
}

// Option is a persisted answer option of one question.
type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
	Label      string `json:"label"`
	Order      int    `json:"order"`
}

// Rule is a persisted conditional rule.
type Rule struct {
	ID               string `json:"id"`
	SurveyID         string `json:"survey_id"`
	SourceQuestionID string `json:"source_question_id"`
	Condition        string `json:"condition"`
	Action           string `json:"action"`
}

// EntityGraph is the complete persisted state of one survey.
//
// Merge takes exclusive ownership of a graph for the duration of one call.
// Rows are held by pointer so that matched rows are updated in place and
// keep their identity.
type EntityGraph struct {
	Survey    Survey      `json:"survey"`
	Sections  []*Section  `json:"sections"`
	Questions []*Question `json:"questions"`
	Options   []*Option   `json:"options"`
	Rules     []*Rule     `json:"rules"`
}

// NewEntityGraph returns an empty graph with non-nil collections.
func NewEntityGraph() *EntityGraph {
	return &EntityGraph{
		Sections:  []*Section{},
		Questions: []*Question{},
		Options:   []*Option{},
		Rules:     []*Rule{},
	}
}

// QuestionByID returns the question with the given id, or nil.
func (g *EntityGraph) QuestionByID(id string) *Question {
	for _, q := range g.Questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Clone returns a deep copy of the graph. Settings blobs are copied too.
func (g *EntityGraph) Clone() *EntityGraph {
	c := &EntityGraph{
		Survey:    g.Survey,
		Sections:  make([]*Section, len(g.Sections)),
		Questions: make([]*Question, len(g.Questions)),
		Options:   make([]*Option, len(g.Options)),
		Rules:     make([]*Rule, len(g.Rules)),
	}
	for i, s := range g.Sections {
		cp := *s
		cp.Settings = CloneRaw(s.Settings)
		c.Sections[i] = &cp
	}
	for i, q := range g.Questions {
		cp := *q
		cp.Settings = CloneRaw(q.Settings)
		c.Questions[i] = &cp
	}
	for i, o := range g.Options {
		cp := *o
		c.Options[i] = &cp
	}
	for i, r := range g.Rules {
		cp := *r
		c.Rules[i] = &cp
	}
	return c
}

// CloneRaw copies a raw JSON blob so the copy shares no memory with raw.
func CloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
