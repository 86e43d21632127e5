package syncer

import "fmt"

// KindCounts tallies what a merge did to one entity kind.
type KindCounts struct {
	Created int `json:"created"`
	Matched int `json:"matched"`
	Deleted int `json:"deleted"`
}

// MergeReport summarizes one successful Merge.
type MergeReport struct {
	SurveyID      string     `json:"survey_id"`
	SurveyCreated bool       `json:"survey_created"`
	Sections      KindCounts `json:"sections"`
	Questions     KindCounts `json:"questions"`
	Options       KindCounts `json:"options"`
	Rules         KindCounts `json:"rules"`
}

// Changed reports whether any row was created or deleted.
func (r MergeReport) Changed() bool {
	for _, k := range []KindCounts{r.Sections, r.Questions, r.Options, r.Rules} {
		if k.Created > 0 || k.Deleted > 0 {
			return true
		}
	}
	return r.SurveyCreated
}

// String renders a one-line summary.
func (r MergeReport) String() string {
	return fmt.Sprintf("survey %s: sections %s, questions %s, options %s, rules %s",
		r.SurveyID, r.Sections, r.Questions, r.Options, r.Rules)
}

// String renders counts as "+created ~matched -deleted".
func (k KindCounts) String() string {
	return fmt.Sprintf("+%d ~%d -%d", k.Created, k.Matched, k.Deleted)
}
