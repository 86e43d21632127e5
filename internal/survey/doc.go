// Package survey provides the survey definition wire types and the persisted
// entity model for surveysync.
//
// This package contains types and small pure helpers only. All other
// internal packages import survey; survey imports nothing internal.
//
// Key design constraints:
//   - Wire DTOs use camelCase JSON tags and mirror the authoring format
//   - Settings blobs are opaque json.RawMessage, passed through untouched
//   - Natural keys (section title, question key, option value) compare
//     with Unicode case folding via FoldKey
//   - The survey theme has one structured representation (Theme); its JSON
//     blob form is derived, never stored independently
package survey
