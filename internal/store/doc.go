// Package store provides SQLite-backed persistence for survey entity graphs.
//
// The store is the caller-side collaborator of the sync engine: it loads the
// current graph of one survey, hands it to syncer.Engine.Merge, and saves the
// result in a single transaction. The engine itself never touches storage.
//
// # Tables
//
//   - surveys: one row per survey, unique code
//   - sections, questions, options, rules: children keyed by survey
//
// Theme colours are stored as scalar columns plus a JSON blob synthesized
// from them by survey.EncodeTheme. On load the scalars win and the blob only
// fills gaps (survey.DecodeTheme).
//
// Parent deletion cascades through foreign keys, and SaveGraph also removes
// missing children explicitly, children first.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
