package report

import (
	"sort"
	"strings"
	"sync"

	"walflow/internal/domain"
)

// ItemType distinguishes node and pipe entries in an ordering.
type ItemType string

const (
	ItemNode ItemType = "node"
	ItemEdge ItemType = "edge"
)

// Item references a node or pipe by id.
type Item struct {
	Type ItemType `json:"type"`
	ID   string   `json:"id"`
}

// ComputeOrder walks the graph breadth-first from every node without incoming
// pipes, emitting each node followed by its outgoing pipes. When every node
// has an incoming pipe the walk starts at the first declared node. Anything
// the walk misses is appended in declaration order, nodes before pipes.
func ComputeOrder(s domain.Snapshot) []Item {
	order := make([]Item, 0, len(s.Nodes)+len(s.Edges))

	exists := make(map[string]bool, len(s.Nodes))
	inDegree := make(map[string]int, len(s.Nodes))
	outgoing := make(map[string][]domain.Edge, len(s.Nodes))
	for _, n := range s.Nodes {
		exists[n.ID] = true
	}
	for _, e := range s.Edges {
		inDegree[e.Target]++
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	var queue []string
	for _, n := range s.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 && len(s.Nodes) > 0 {
		queue = append(queue, s.Nodes[0].ID)
	}

	visitedNodes := make(map[string]bool, len(s.Nodes))
	visitedEdges := make(map[string]bool, len(s.Edges))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visitedNodes[id] {
			continue
		}
		visitedNodes[id] = true
		order = append(order, Item{Type: ItemNode, ID: id})

		for _, e := range outgoing[id] {
			if visitedEdges[e.ID] {
				continue
			}
			visitedEdges[e.ID] = true
			order = append(order, Item{Type: ItemEdge, ID: e.ID})
			if exists[e.Target] {
				queue = append(queue, e.Target)
			}
		}
	}

	for _, n := range s.Nodes {
		if !visitedNodes[n.ID] {
			order = append(order, Item{Type: ItemNode, ID: n.ID})
		}
	}
	for _, e := range s.Edges {
		if !visitedEdges[e.ID] {
			order = append(order, Item{Type: ItemEdge, ID: e.ID})
		}
	}
	return order
}

// Orderer holds a user-adjustable ordering for one graph.
type Orderer struct {
	mu        sync.Mutex
	order     []Item
	signature string
}

// NewOrderer creates an empty orderer.
func NewOrderer() *Orderer {
	return &Orderer{}
}

// Refresh recomputes the ordering if the snapshot's id set differs from the
// one the current ordering was built from. It reports whether it recomputed.
func (o *Orderer) Refresh(s domain.Snapshot) ([]Item, bool) {
	sig := signature(s)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.order != nil && sig == o.signature {
		return o.copyOrder(), false
	}
	o.order = ComputeOrder(s)
	o.signature = sig
	return o.copyOrder(), true
}

// Order returns the current ordering.
func (o *Orderer) Order() []Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyOrder()
}

// MoveItem shifts the entry at index by one position in direction (-1 or +1).
// Moves that would leave the list are ignored. It reports whether anything moved.
func (o *Orderer) MoveItem(index, direction int) bool {
	if direction != -1 && direction != 1 {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	target := index + direction
	if index < 0 || index >= len(o.order) || target < 0 || target >= len(o.order) {
		return false
	}
	o.order[index], o.order[target] = o.order[target], o.order[index]
	return true
}

// IndexOf returns the position of an id in the current ordering, or -1.
func (o *Orderer) IndexOf(t ItemType, id string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, it := range o.order {
		if it.Type == t && it.ID == id {
			return i
		}
	}
	return -1
}

func (o *Orderer) copyOrder() []Item {
	return append([]Item(nil), o.order...)
}

func signature(s domain.Snapshot) string {
	ids := make([]string, 0, len(s.Nodes)+len(s.Edges))
	for _, n := range s.Nodes {
		ids = append(ids, "n:"+n.ID)
	}
	for _, e := range s.Edges {
		ids = append(ids, "e:"+e.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}
