// Package handler implements the HTTP API of the piping editor.
//
// The API is a thin layer over the graph, plan and solver services. Routes
// are mounted on a chi router built by NewRouter.
//
// # Handlers
//
// GraphHandler covers nodes, pipes, positions, global settings and catalog
// driven pipe sizing.
//
// PlanHandler manages the plan library and plan import/export in JSON or
// YAML.
//
// SolverHandler starts simulations, sets valve openings and reports the
// solver connection.
//
// ReportHandler serves the ordered tabular view and accepts manual moves.
//
// # Errors
//
// Errors are returned as JSON with {error, details}. Service errors map onto
// status codes by sentinel: not found is 404, rejected input is 400, an
// invalid bulk graph is 422, a simulation already running is 409 and an
// unavailable solver or plan library is 503.
//
// # Server-Sent Events
//
// GET /events streams model events from the hub so the canvas can follow
// edits, telemetry merges and solver status without polling.
package handler
