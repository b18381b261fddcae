package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	nodeIDPrefix = "node_"
	edgeIDPrefix = "Pipe "
)

// IDAllocator issues node and edge ids for a single graph. Counters only move
// forward so a deleted id is never handed out again.
type IDAllocator struct {
	nextNode int
	nextEdge int
}

// NewIDAllocator creates an allocator starting at node_0 and Pipe 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{nextNode: 0, nextEdge: 1}
}

// NextNodeID returns a fresh node id and its sequence number.
func (a *IDAllocator) NextNodeID() (string, int) {
	n := a.nextNode
	a.nextNode++
	return nodeIDPrefix + strconv.Itoa(n), n
}

// NextEdgeID returns a fresh edge id.
func (a *IDAllocator) NextEdgeID() string {
	n := a.nextEdge
	a.nextEdge++
	return fmt.Sprintf("%s%d", edgeIDPrefix, n)
}

// ObserveNode moves the node counter past an id of the form node_N.
func (a *IDAllocator) ObserveNode(id string) {
	if n, ok := suffixNumber(id, nodeIDPrefix); ok && n >= a.nextNode {
		a.nextNode = n + 1
	}
}

// ObserveEdge moves the edge counter past an id of the form "Pipe N".
func (a *IDAllocator) ObserveEdge(id string) {
	if n, ok := suffixNumber(id, edgeIDPrefix); ok && n >= a.nextEdge {
		a.nextEdge = n + 1
	}
}

func suffixNumber(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
