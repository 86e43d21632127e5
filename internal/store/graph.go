package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/surveysync/internal/survey"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const surveyColumns = `id, code, title, description, theme_accent, theme_panel, theme_json, custom_css, is_active, version`

// LoadGraph returns the complete graph of the survey with the given code.
//
// When no such survey exists it returns an empty graph together with
// ErrSurveyNotFound, so callers can merge into it as a brand-new survey.
func (s *Store) LoadGraph(ctx context.Context, code string) (*survey.EntityGraph, error) {
	return s.loadGraph(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE code = ?`, code)
}

// LoadGraphByID is LoadGraph keyed by survey id.
func (s *Store) LoadGraphByID(ctx context.Context, id string) (*survey.EntityGraph, error) {
	return s.loadGraph(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = ?`, id)
}

func (s *Store) loadGraph(ctx context.Context, query, arg string) (*survey.EntityGraph, error) {
	g := survey.NewEntityGraph()

	sv, err := scanSurvey(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrSurveyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load survey %q: %w", arg, err)
	}
	g.Survey = sv

	if g.Sections, err = readSections(ctx, s.db, sv.ID); err != nil {
		return nil, err
	}
	if g.Questions, err = readQuestions(ctx, s.db, sv.ID); err != nil {
		return nil, err
	}
	if g.Options, err = readOptions(ctx, s.db, sv.ID); err != nil {
		return nil, err
	}
	if g.Rules, err = readRules(ctx, s.db, sv.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// Surveys lists every stored survey ordered by code.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) Surveys(ctx context.Context) ([]survey.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+surveyColumns+` FROM surveys ORDER BY code COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	out := []survey.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		out = append(out, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate surveys: %w", err)
	}
	return out, nil
}

// SaveGraph persists g atomically. Every row of the graph is upserted, then
// stored rows of the survey that are no longer in the graph are deleted,
// children first.
func (s *Store) SaveGraph(ctx context.Context, g *survey.EntityGraph) error {
	if g == nil || g.Survey.ID == "" {
		return errors.New("save graph: survey id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertGraph(ctx, tx, g); err != nil {
			return fmt.Errorf("save graph %s: %w", g.Survey.ID, err)
		}
		if err := pruneGraph(ctx, tx, g); err != nil {
			return fmt.Errorf("save graph %s: %w", g.Survey.ID, err)
		}
		return nil
	})
}

// DeleteSurvey removes a survey and, through foreign keys, its whole graph.
func (s *Store) DeleteSurvey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	if n == 0 {
		return ErrSurveyNotFound
	}
	return nil
}

func upsertGraph(ctx context.Context, tx *sql.Tx, g *survey.EntityGraph) error {
	sv := g.Survey
	themeJSON, err := survey.EncodeTheme(sv.Theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO surveys (`+surveyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			title = excluded.title,
			description = excluded.description,
			theme_accent = excluded.theme_accent,
			theme_panel = excluded.theme_panel,
			theme_json = excluded.theme_json,
			custom_css = excluded.custom_css,
			is_active = excluded.is_active,
			version = excluded.version
	`, sv.ID, sv.Code, sv.Title, sv.Description, sv.Theme.Accent, sv.Theme.Panel,
		themeJSON, sv.CustomCSS, sv.IsActive, sv.Version)
	if err != nil {
		return fmt.Errorf("upsert survey: %w", err)
	}

	for i, sec := range g.Sections {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sections (id, survey_id, title, position, column_count, settings, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				survey_id = excluded.survey_id,
				title = excluded.title,
				position = excluded.position,
				column_count = excluded.column_count,
				settings = excluded.settings,
				seq = excluded.seq
		`, sec.ID, sv.ID, sec.Title, sec.Order, max(1, sec.Columns), rawToNull(sec.Settings), i)
		if err != nil {
			return fmt.Errorf("upsert section %s: %w", sec.ID, err)
		}
	}

	for i, q := range g.Questions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO questions (id, survey_id, section_id, question_key, question_type, prompt, required, position, settings, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				survey_id = excluded.survey_id,
				section_id = excluded.section_id,
				question_key = excluded.question_key,
				question_type = excluded.question_type,
				prompt = excluded.prompt,
				required = excluded.required,
				position = excluded.position,
				settings = excluded.settings,
				seq = excluded.seq
		`, q.ID, sv.ID, q.SectionID, q.Key, q.Type, q.Prompt, q.Required, q.Order, rawToNull(q.Settings), i)
		if err != nil {
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
	}

	for i, o := range g.Options {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO options (id, question_id, value, label, position, seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				question_id = excluded.question_id,
				value = excluded.value,
				label = excluded.label,
				position = excluded.position,
				seq = excluded.seq
		`, o.ID, o.QuestionID, o.Value, o.Label, o.Order, i)
		if err != nil {
			return fmt.Errorf("upsert option %s: %w", o.ID, err)
		}
	}

	for i, r := range g.Rules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rules (id, survey_id, source_question_id, condition_text, action_text, seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				survey_id = excluded.survey_id,
				source_question_id = excluded.source_question_id,
				condition_text = excluded.condition_text,
				action_text = excluded.action_text,
				seq = excluded.seq
		`, r.ID, sv.ID, r.SourceQuestionID, r.Condition, r.Action, i)
		if err != nil {
			return fmt.Errorf("upsert rule %s: %w", r.ID, err)
		}
	}
	return nil
}

// pruneGraph deletes stored rows of g's survey that g no longer holds.
func pruneGraph(ctx context.Context, tx *sql.Tx, g *survey.EntityGraph) error {
	id := g.Survey.ID
	steps := []struct {
		table string
		query string
		keep  map[string]bool
	}{
		{"rules", `SELECT id FROM rules WHERE survey_id = ?`, idSet(g.Rules, func(r *survey.Rule) string { return r.ID })},
		{"options", `SELECT o.id FROM options o JOIN questions q ON q.id = o.question_id WHERE q.survey_id = ?`,
			idSet(g.Options, func(o *survey.Option) string { return o.ID })},
		{"questions", `SELECT id FROM questions WHERE survey_id = ?`, idSet(g.Questions, func(q *survey.Question) string { return q.ID })},
		{"sections", `SELECT id FROM sections WHERE survey_id = ?`, idSet(g.Sections, func(s *survey.Section) string { return s.ID })},
	}

	for _, step := range steps {
		stored, err := queryIDs(ctx, tx, step.query, id)
		if err != nil {
			return fmt.Errorf("list %s: %w", step.table, err)
		}
		for _, rowID := range stored {
			if step.keep[rowID] {
				continue
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+step.table+` WHERE id = ?`, rowID); err != nil {
				return fmt.Errorf("delete %s %s: %w", step.table, rowID, err)
			}
		}
	}
	return nil
}

func idSet[T any](rows []*T, idOf func(*T) string) map[string]bool {
	out := make(map[string]bool, len(rows))
	for _, row := range rows {
		out[idOf(row)] = true
	}
	return out
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row scanner) (survey.Survey, error) {
	var (
		sv                       survey.Survey
		accent, panel, themeJSON string
	)
	err := row.Scan(&sv.ID, &sv.Code, &sv.Title, &sv.Description,
		&accent, &panel, &themeJSON, &sv.CustomCSS, &sv.IsActive, &sv.Version)
	if err != nil {
		return survey.Survey{}, err
	}
	sv.Theme = survey.DecodeTheme(accent, panel, themeJSON)
	return sv, nil
}

func readSections(ctx context.Context, q querier, surveyID string) ([]*survey.Section, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, title, position, column_count, settings
		FROM sections
		WHERE survey_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	out := []*survey.Section{}
	for rows.Next() {
		var (
			sec      survey.Section
			settings sql.NullString
		)
		if err := rows.Scan(&sec.ID, &sec.SurveyID, &sec.Title, &sec.Order, &sec.Columns, &settings); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.Settings = nullToRaw(settings)
		out = append(out, &sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return out, nil
}

func readQuestions(ctx context.Context, q querier, surveyID string) ([]*survey.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, section_id, question_key, question_type, prompt, required, position, settings
		FROM questions
		WHERE survey_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	out := []*survey.Question{}
	for rows.Next() {
		var (
			qu       survey.Question
			settings sql.NullString
		)
		if err := rows.Scan(&qu.ID, &qu.SurveyID, &qu.SectionID, &qu.Key, &qu.Type,
			&qu.Prompt, &qu.Required, &qu.Order, &settings); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		qu.Settings = nullToRaw(settings)
		out = append(out, &qu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func readOptions(ctx context.Context, q querier, surveyID string) ([]*survey.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.value, o.label, o.position
		FROM options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.survey_id = ?
		ORDER BY o.seq ASC, o.id COLLATE BINARY ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	out := []*survey.Option{}
	for rows.Next() {
		var o survey.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Value, &o.Label, &o.Order); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}
	return out, nil
}

func readRules(ctx context.Context, q querier, surveyID string) ([]*survey.Rule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, survey_id, source_question_id, condition_text, action_text
		FROM rules
		WHERE survey_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	out := []*survey.Rule{}
	for rows.Next() {
		var r survey.Rule
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.SourceQuestionID, &r.Condition, &r.Action); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

func rawToNull(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}

func nullToRaw(ns sql.NullString) json.RawMessage {
	if !ns.Valid {
		return nil
	}
	return json.RawMessage(ns.String)
}
