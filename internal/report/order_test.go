package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walflow/internal/domain"
)

func node(id string, kind domain.NodeKind) domain.Node {
	return *domain.NewNode(id, kind, domain.Position{}, id)
}

func pipe(id, from, to string) domain.Edge {
	return *domain.NewEdge(id, from, "outlet-0", to, "inlet-0")
}

func TestComputeOrderChain(t *testing.T) {
	s := domain.Snapshot{
		Nodes: []domain.Node{node("A", domain.KindTank), node("B", domain.KindPump), node("C", domain.KindTank)},
		Edges: []domain.Edge{pipe("A->B", "A", "B"), pipe("B->C", "B", "C")},
	}

	assert.Equal(t, []Item{
		{ItemNode, "A"},
		{ItemEdge, "A->B"},
		{ItemNode, "B"},
		{ItemEdge, "B->C"},
		{ItemNode, "C"},
	}, ComputeOrder(s))
}

func TestComputeOrderDeclarationOrderDoesNotMatter(t *testing.T) {
	s := domain.Snapshot{
		Nodes: []domain.Node{node("C", domain.KindTank), node("B", domain.KindPump), node("A", domain.KindTank)},
		Edges: []domain.Edge{pipe("B->C", "B", "C"), pipe("A->B", "A", "B")},
	}

	order := ComputeOrder(s)
	assert.Equal(t, Item{ItemNode, "A"}, order[0])
	assert.Equal(t, Item{ItemNode, "C"}, order[4])
}

func TestComputeOrderIsolatedNode(t *testing.T) {
	s := domain.Snapshot{
		Nodes: []domain.Node{node("A", domain.KindTank), node("B", domain.KindPump), node("C", domain.KindTank), node("D", domain.KindFilter)},
		Edges: []domain.Edge{pipe("A->B", "A", "B"), pipe("B->C", "B", "C")},
	}

	order := ComputeOrder(s)
	require.Len(t, order, 6)

	count := 0
	for _, it := range order {
		if it.ID == "D" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeOrderCycle(t *testing.T) {
	s := domain.Snapshot{
		Nodes: []domain.Node{node("A", domain.KindPump), node("B", domain.KindValve)},
		Edges: []domain.Edge{pipe("A->B", "A", "B"), pipe("B->A", "B", "A")},
	}

	assert.Equal(t, []Item{
		{ItemNode, "A"},
		{ItemEdge, "A->B"},
		{ItemNode, "B"},
		{ItemEdge, "B->A"},
	}, ComputeOrder(s))
}

func TestComputeOrderUnreachableCycle(t *testing.T) {
	// X and Y form a loop fed by nothing; they follow the traversal from S.
	s := domain.Snapshot{
		Nodes: []domain.Node{node("S", domain.KindTank), node("X", domain.KindPump), node("Y", domain.KindValve), node("T", domain.KindTank)},
		Edges: []domain.Edge{pipe("X->Y", "X", "Y"), pipe("Y->X", "Y", "X"), pipe("S->T", "S", "T")},
	}

	assert.Equal(t, []Item{
		{ItemNode, "S"},
		{ItemEdge, "S->T"},
		{ItemNode, "T"},
		{ItemNode, "X"},
		{ItemNode, "Y"},
		{ItemEdge, "X->Y"},
		{ItemEdge, "Y->X"},
	}, ComputeOrder(s))
}

func TestComputeOrderEmpty(t *testing.T) {
	assert.Empty(t, ComputeOrder(domain.Snapshot{}))
}

func TestOrdererKeepsManualMoves(t *testing.T) {
	s := domain.Snapshot{
		Nodes: []domain.Node{node("A", domain.KindTank), node("B", domain.KindPump)},
		Edges: []domain.Edge{pipe("A->B", "A", "B")},
	}
	o := NewOrderer()

	_, recomputed := o.Refresh(s)
	assert.True(t, recomputed)

	require.True(t, o.MoveItem(2, -1))
	assert.Equal(t, []Item{{ItemNode, "A"}, {ItemNode, "B"}, {ItemEdge, "A->B"}}, o.Order())

	t.Run("parameter and telemetry changes keep the order", func(t *testing.T) {
		s.Nodes[0].SetParameter(domain.ParamLevel, 5.0)
		s.Edges[0].Telemetry = &domain.PortReadings{Outlets: []domain.PortReading{{FlowRate: 1}}}
		order, recomputed := o.Refresh(s)
		assert.False(t, recomputed)
		assert.Equal(t, Item{ItemNode, "B"}, order[1])
	})

	t.Run("out of range moves are no-ops", func(t *testing.T) {
		before := o.Order()
		assert.False(t, o.MoveItem(0, -1))
		assert.False(t, o.MoveItem(2, 1))
		assert.False(t, o.MoveItem(7, -1))
		assert.False(t, o.MoveItem(1, 2))
		assert.Equal(t, before, o.Order())
	})

	t.Run("adding a node recomputes", func(t *testing.T) {
		s.Nodes = append(s.Nodes, node("C", domain.KindFilter))
		order, recomputed := o.Refresh(s)
		assert.True(t, recomputed)
		assert.Equal(t, []Item{{ItemNode, "A"}, {ItemEdge, "A->B"}, {ItemNode, "C"}, {ItemNode, "B"}}, order)
		assert.Equal(t, 2, o.IndexOf(ItemNode, "C"))
	})
}
