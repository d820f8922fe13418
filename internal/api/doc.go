// Package api defines wire-format types and converters for the HTTP API and
// CLI layer. It translates internal pipeline models into transport-friendly
// DTOs so consumers never couple to storage types.
//
// # Key Types
//
// Workflow/Stage/Application/Transition: transport representations of the
// pipeline records, timestamps rendered as RFC3339 with milliseconds.
//
// ViewItem: one application annotated with its stage, sidebar bucket, and
// due-date status, as produced by the view projector.
//
// PipelineService: the operation surface shared by the HTTP server and CLI.
// It owns DTO conversion and builds one projector snapshot per view request.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (pipeline.StageType, pipeline.SubStatus) are exposed as lowercase
// strings. ViewQueryFromValues rejects unknown facet and sort values instead
// of ignoring them, so typos surface as 400s rather than empty results.
package api
