// Package views derives the read-side presentations of a workflow's
// applications: the flat list, the Kanban board, and the pipeline table.
// All three run the same filter pipeline over one snapshot; the view mode
// only changes the final shaping, never which applications survive.
package views
