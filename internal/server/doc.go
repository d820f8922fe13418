// Package server hosts the HTTP API for the pipeline. It wires the store
// into api.PipelineService, routes the /api/v1 surface, maps store sentinels
// onto HTTP status codes, and enforces single-instance execution with
// flock-based locking so two servers never share one database.
package server
