package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/surveysync/internal/survey"
)

func TestResolver_IDBeforeNaturalKey(t *testing.T) {
	rows := []*survey.Section{
		{ID: "s1", Title: "Intro"},
		{ID: "s2", Title: "Outro"},
	}
	r := sectionResolver(rows)

	// Id wins even when the title names another row.
	assert.Same(t, rows[1], r.resolve("s2", "Intro"))
	assert.Same(t, rows[0], r.resolve("", "intro"))
	assert.Nil(t, r.resolve("", "Outro"), "already claimed by id")
}

func TestResolver_UnknownIDFallsBackToKey(t *testing.T) {
	rows := []*survey.Question{{ID: "q1", Key: "Name"}}
	r := questionResolver(rows)

	assert.Same(t, rows[0], r.resolve("not-persisted", "NAME"))
	assert.True(t, r.isClaimed(rows[0]))
}

func TestResolver_DuplicateNaturalKeysClaimInOrder(t *testing.T) {
	rows := []*survey.Option{
		{ID: "o1", Value: "yes"},
		{ID: "o2", Value: "YES"},
	}
	r := optionResolver(rows)

	assert.Same(t, rows[0], r.resolve("", "Yes"))
	assert.Same(t, rows[1], r.resolve("", "yes"))
	assert.Nil(t, r.resolve("", "yes"))
}

func TestResolver_RulesHaveNoNaturalKey(t *testing.T) {
	rows := []*survey.Rule{{ID: "r1", Condition: "x"}}
	r := ruleResolver(rows)

	assert.Nil(t, r.resolve("", "x"))
	assert.Same(t, rows[0], r.resolve("r1", ""))
	assert.Nil(t, r.resolve("r1", ""), "claimed once")
}

func TestResolver_ClaimNewRow(t *testing.T) {
	r := sectionResolver(nil)
	row := &survey.Section{ID: "fresh"}

	assert.False(t, r.isClaimed(row))
	r.claim(row)
	assert.True(t, r.isClaimed(row))
}

func TestResolver_BlankKeysNeverMatch(t *testing.T) {
	rows := []*survey.Section{{ID: "s1", Title: "  "}}
	r := sectionResolver(rows)

	assert.Nil(t, r.resolve("", ""))
	assert.Nil(t, r.resolve("", "   "))
}

func TestResolver_ReservedRowSkipsNaturalKey(t *testing.T) {
	rows := []*survey.Question{{ID: "A", Key: "k"}}
	r := questionResolver(rows)
	r.reserve([]string{"", "A", "unknown"})

	assert.Nil(t, r.resolve("", "k"), "reserved for the item naming A")
	assert.Same(t, rows[0], r.resolve("A", "k2"))
}
