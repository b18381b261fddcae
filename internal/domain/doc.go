// Package domain defines the core types of the WalFlow process-network editor.
//
// This package contains the entities and value objects that describe a piping
// network: equipment nodes, the pipe segments joining them, process-wide
// solver settings, and the telemetry a solver reports back.
//
// # Core Types
//
// Node represents a piece of equipment (tank, pump, valve, orifice, filter,
// heat exchanger, splitter, mixer) with a kind-specific parameter record and
// optional solver telemetry.
//
// Edge represents a pipe segment from an outlet port of one node to an inlet
// port of another, with its own length, diameter and telemetry.
//
// GlobalSettings holds the fluid and numerical settings sent with every solver
// push.
//
// Snapshot is an immutable copy of the whole graph, used for serialization and
// for pushes to the solver.
//
// # Ports
//
// Each kind declares a fixed number of inlet and outlet ports addressed by
// handles such as "inlet-0" and "outlet-1". A handle accepts at most one edge.
//
// # Design Principles
//
// - Parameters are plain data: no function values are ever stored on a node
// - Telemetry is solver-owned and only replaced wholesale
// - Id allocation is an explicit object scoped to one graph
// - No database or transport dependencies
package domain
