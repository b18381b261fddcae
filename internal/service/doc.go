// Package service implements the graph model and its persistence workflows.
//
// # Services
//
// GraphService owns the canonical process network: equipment nodes, pipe
// edges and global solver settings. Every mutation is validated before it is
// applied, so a rejected edit leaves the graph unchanged. Reads hand out
// copies. Solver telemetry is merged through MergeTelemetry, which only ever
// replaces readings and never parameters.
//
// PlanService saves and loads the graph as plan documents, in the sqlite plan
// library or as JSON and YAML files.
//
// # Event System
//
// Every change is announced on the EventBus. The sync client subscribes to
// schedule debounced pushes to the solver, and the hub streams the same
// events to presentation clients over Server-Sent Events.
package service
