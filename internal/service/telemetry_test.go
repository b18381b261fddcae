package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walflow/internal/domain"
)

func TestMergeTelemetry(t *testing.T) {
	svc, events := newTestService(t)
	a, _ := svc.AddNode(domain.KindTank, domain.Position{}, nil)
	b, _ := svc.AddNode(domain.KindPump, domain.Position{}, nil)
	pipe, _ := svc.AddEdge(a, "", b, "", nil)
	drain(events)

	first := domain.Telemetry{
		Nodes: map[string]domain.PortReadings{
			a: {Outlets: []domain.PortReading{{Pressure: 101325, FlowRate: 0.01, Temperature: 313.15}}},
			b: {Inlets: []domain.PortReading{{Pressure: 100000}}},
		},
		Edges: map[string]domain.PortReadings{
			pipe: {Inlets: []domain.PortReading{{Pressure: 101325}}, Outlets: []domain.PortReading{{Pressure: 100000}}},
		},
	}

	res := svc.MergeTelemetry(first)
	assert.Equal(t, MergeResult{Nodes: 2, Edges: 1}, res)

	t.Run("absent entities keep prior telemetry", func(t *testing.T) {
		svc.MergeTelemetry(domain.Telemetry{
			Nodes: map[string]domain.PortReadings{
				b: {Inlets: []domain.PortReading{{Pressure: 90000}}},
			},
		})

		na, _ := svc.GetNode(a)
		require.NotNil(t, na.Telemetry)
		assert.Equal(t, 101325.0, na.Telemetry.Outlets[0].Pressure)

		nb, _ := svc.GetNode(b)
		assert.Equal(t, 90000.0, nb.Telemetry.Inlets[0].Pressure)

		e, _ := svc.GetEdge(pipe)
		require.NotNil(t, e.Telemetry)
		assert.Equal(t, 100000.0, e.Telemetry.Outlets[0].Pressure)
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		res := svc.MergeTelemetry(domain.Telemetry{
			Nodes: map[string]domain.PortReadings{"deleted": {}},
			Edges: map[string]domain.PortReadings{"Pipe 99": {}},
		})
		assert.Equal(t, MergeResult{Ignored: 2}, res)
	})

	t.Run("edit after push survives merge", func(t *testing.T) {
		require.NoError(t, svc.UpdateNodeParameters(b, map[string]any{domain.ParamPumpA: 95.0}))
		svc.MergeTelemetry(first)
		n, _ := svc.GetNode(b)
		assert.Equal(t, 95.0, n.Parameters[domain.ParamPumpA])
	})

	t.Run("merged readings are copies", func(t *testing.T) {
		first.Nodes[a].Outlets[0].Pressure = 1
		n, _ := svc.GetNode(a)
		assert.Equal(t, 101325.0, n.Telemetry.Outlets[0].Pressure)
	})

	t.Run("merges are not mutations", func(t *testing.T) {
		for _, e := range drain(events) {
			if e.Type == EventTelemetryMerged {
				assert.False(t, e.Type.Mutation())
			}
		}
	})
}
