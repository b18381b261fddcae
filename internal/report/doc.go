// Package report produces the tabular pipe and equipment list.
//
// Orderer keeps a flow-direction ordering of nodes and pipes that the user can
// adjust one step at a time. The ordering is recomputed from scratch only when
// the set of ids in the graph changes, so manual moves survive parameter edits
// and telemetry updates.
//
// BuildRows resolves an ordering against a graph snapshot and formats each
// entry's telemetry in display units. Render writes the rows as a terminal
// table, markdown, CSV or JSON.
package report
