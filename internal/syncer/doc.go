// Package syncer reconciles an incoming survey definition against the
// persisted entity graph of that survey.
//
// ARCHITECTURE:
//
// Merge runs strictly in sequence:
//  1. Validate the whole definition. Any violation rejects the call with a
//     *ValidationFailure and the graph is left untouched.
//  2. Survey fields and theme.
//  3. Sections, matched by id, then by title.
//  4. Questions of each section, matched by id, then by key (survey-wide).
//  5. Options of each question, matched by id, then by value (per question).
//  6. Rules, matched by id only.
//  7. Prune every row no incoming item claimed, cascading downwards.
//
// Each phase builds fresh lookup tables (by id, by natural key) and an
// explicit claimed set, so a persisted row is claimed at most once per pass.
//
// The engine is single-threaded and performs no I/O. It takes exclusive
// ownership of the graph for the duration of one Merge call; callers that
// share a survey across goroutines must serialize Merge themselves.
package syncer
