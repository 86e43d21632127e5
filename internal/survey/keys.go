package survey

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldKey normalizes a natural key for case-insensitive comparison.
// Surrounding whitespace is ignored and the result is NFC normalized.
func FoldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// ConditionKey extracts the question key implied by a rule condition: the
// longest run of Unicode letters, digits, '_' and '-' at the very start of
// the condition. Leading whitespace is not skipped, so "  q1 == 1" yields "".
//
// This is a legacy fallback for rules that carry neither a source question
// id nor a key. Keep every use behind this function.
func ConditionKey(condition string) string {
	end := 0
	for end < len(condition) {
		r, size := utf8.DecodeRuneInString(condition[end:])
		if !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-') {
			break
		}
		end += size
	}
	return condition[:end]
}

// QuestionIndex maps the questions of one definition for rule resolution.
type QuestionIndex struct {
	byID  map[string]string // definition question id -> folded key
	byKey map[string]bool   // folded key
}

// NewQuestionIndex indexes every question of def. For repeated ids or keys
// the first occurrence wins.
func NewQuestionIndex(def *Definition) QuestionIndex {
	ix := QuestionIndex{
		byID:  make(map[string]string),
		byKey: make(map[string]bool),
	}
	for _, sec := range def.Sections {
		for _, q := range sec.Questions {
			key := FoldKey(q.Key)
			if key == "" {
				continue
			}
			if id := strings.TrimSpace(q.ID); id != "" {
				if _, seen := ix.byID[id]; !seen {
					ix.byID[id] = key
				}
			}
			ix.byKey[key] = true
		}
	}
	return ix
}

// Resolve returns the folded key of the question a rule points at.
//
// Precedence, first match wins:
//  1. sourceQuestionId naming a question of the definition
//  2. sourceQuestionKey naming a question of the definition
//  3. the ConditionKey of the condition naming a question of the definition
func (ix QuestionIndex) Resolve(r RuleDef) (string, bool) {
	if id := strings.TrimSpace(r.SourceQuestionID); id != "" {
		if key, ok := ix.byID[id]; ok {
			return key, true
		}
	}
	if key := FoldKey(r.SourceKey()); key != "" && ix.byKey[key] {
		return key, true
	}
	if key := FoldKey(ConditionKey(r.Condition)); key != "" && ix.byKey[key] {
		return key, true
	}
	return "", false
}
