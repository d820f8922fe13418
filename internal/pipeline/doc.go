// Package pipeline persists hiring workflows, their stages, and candidate
// applications in SQLite, and exposes the transition engine that moves
// applications between stages.
//
// The Store owns schema initialization, the workflow/stage registry
// (create, append, reorder, remove with migration), application lifecycle,
// and the optimistic-concurrency move operation. Every application carries a
// monotonic version; writers supply the version they read and lose with
// ErrStaleVersion when another recruiter got there first. Stage orders within
// a workflow are always the dense sequence 0..N-1; registry mutations run in
// single transactions so that invariant holds at every observable point.
//
// Treat this package as the single source of truth for pipeline semantics;
// when you add stage types or application fields, update schema.sql and bump
// schemaVersion.
package pipeline
