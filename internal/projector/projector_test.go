package projector

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surveysync/internal/survey"
)

// goldenGraph is stored deliberately out of order.
func goldenGraph() *survey.EntityGraph {
	return &survey.EntityGraph{
		Survey: survey.Survey{
			ID:          "s-1",
			Code:        "lobby",
			Title:       "Lobby",
			Description: "Visit feedback",
			Theme:       survey.Theme{Accent: "#0055ff", Panel: "#ffffff"},
			CustomCSS:   ".panel{}",
			IsActive:    true,
			Version:     3,
		},
		Sections: []*survey.Section{
			{ID: "sec-b", SurveyID: "s-1", Title: "Score", Order: 2, Columns: 1},
			{ID: "sec-a", SurveyID: "s-1", Title: "Visit", Order: 1, Columns: 2, Settings: json.RawMessage(`{"layout":"grid"}`)},
		},
		Questions: []*survey.Question{
			{ID: "q-2", SurveyID: "s-1", SectionID: "sec-a", Key: "wait", Type: "text", Prompt: "Wait?", Order: 2},
			{ID: "q-1", SurveyID: "s-1", SectionID: "sec-a", Key: "reason", Type: "single", Prompt: "Why?", Required: true, Order: 1},
			{ID: "q-3", SurveyID: "s-1", SectionID: "sec-b", Key: "nps", Type: "nps_0_10", Prompt: "Recommend?", Required: true, Order: 1},
		},
		Options: []*survey.Option{
			{ID: "o-2", QuestionID: "q-1", Value: "delivery", Label: "Delivery", Order: 2},
			{ID: "o-1", QuestionID: "q-1", Value: "meeting", Label: "Meeting", Order: 1},
		},
		Rules: []*survey.Rule{
			{ID: "r-1", SurveyID: "s-1", SourceQuestionID: "q-3", Condition: "nps lt 7", Action: "show:areas"},
			{ID: "r-2", SurveyID: "s-1", SourceQuestionID: "q-gone", Condition: "gone == 1", Action: "hide"},
		},
	}
}

func TestToDefinition_Golden(t *testing.T) {
	def := ToDefinition(goldenGraph())

	data, err := json.MarshalIndent(def, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "kiosk_projection", data)
}

func TestToDefinition_Ordering(t *testing.T) {
	g := goldenGraph()
	// Same order, title breaks the tie.
	g.Sections = append(g.Sections, &survey.Section{ID: "sec-c", Title: "Arrival", Order: 2, Columns: 1})
	// Same order, key breaks the tie.
	g.Questions = append(g.Questions, &survey.Question{ID: "q-4", SectionID: "sec-a", Key: "alpha", Order: 2})
	// Same order, value breaks the tie.
	g.Options = append(g.Options, &survey.Option{ID: "o-3", QuestionID: "q-1", Value: "court", Label: "Court", Order: 2})

	def := ToDefinition(g)

	var titles []string
	for _, s := range def.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Visit", "Arrival", "Score"}, titles)

	var keys []string
	for _, q := range def.Sections[0].Questions {
		keys = append(keys, q.Key)
	}
	assert.Equal(t, []string{"reason", "alpha", "wait"}, keys)

	var values []string
	for _, o := range def.Sections[0].Questions[0].Options {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{"meeting", "court", "delivery"}, values)

	assert.Equal(t, "r-1", def.Rules[0].ID, "rules keep stored order")
	assert.Equal(t, "r-2", def.Rules[1].ID)
}

func TestToDefinition_DanglingRule(t *testing.T) {
	def := ToDefinition(goldenGraph())

	require.Len(t, def.Rules, 2)
	require.NotNil(t, def.Rules[0].SourceQuestionKey)
	assert.Equal(t, "nps", *def.Rules[0].SourceQuestionKey)
	assert.Equal(t, "q-gone", def.Rules[1].SourceQuestionID)
	assert.Nil(t, def.Rules[1].SourceQuestionKey)

	dangling := DanglingRules(goldenGraph())
	require.Len(t, dangling, 1)
	assert.Equal(t, "r-2", dangling[0].ID)
}

func TestToDefinition_EmptyGraphIsFullyPopulated(t *testing.T) {
	def := ToDefinition(survey.NewEntityGraph())

	assert.NotNil(t, def.Sections)
	assert.NotNil(t, def.Rules)
	assert.NotNil(t, def.Theme)
	assert.NotNil(t, def.Style)
	assert.Equal(t, "Draft", def.Status)

	data, err := json.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sections":[]`)
	assert.Contains(t, string(data), `"rules":[]`)

	assert.NotPanics(t, func() { ToDefinition(nil) })
}

func TestToDefinition_DoesNotMutateGraph(t *testing.T) {
	g := goldenGraph()
	before := g.Clone()

	def := ToDefinition(g)
	def.Sections[0].Settings[2] = 'X'

	assert.Equal(t, before, g)
}
