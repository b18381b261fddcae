package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walflow/internal/metrics"
	"walflow/internal/service"
	"walflow/internal/testutil"
)

func startHub(t *testing.T, bus *service.EventBus, opts ...Option) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	opts = append(opts, WithMetrics(metrics.NewRegistry()), WithLogger(testutil.NewTestLogger(t)))
	h := New(bus, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, srv, cancel
}

func connect(t *testing.T, h *Hub, url string) (*bufio.Reader, func()) {
	t.Helper()
	before := h.ClientCount()
	resp, err := http.Get(url)
	require.NoError(t, err)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, ": connected"))
	require.Eventually(t, func() bool { return h.ClientCount() == before+1 }, time.Second, 5*time.Millisecond)
	return r, func() { resp.Body.Close() }
}

// nextFrame reads one SSE frame, skipping comments.
func nextFrame(t *testing.T, r *bufio.Reader) (event, data string) {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && data != "":
			return event, data
		}
	}
}

func TestHubForwardsBusEvents(t *testing.T) {
	bus := service.NewEventBus()
	h, srv, _ := startHub(t, bus)

	r, closeConn := connect(t, h, srv.URL)
	defer closeConn()

	bus.Publish(service.Event{Type: service.EventNodeAdded, Payload: map[string]string{"id": "node_0"}})

	event, data := nextFrame(t, r)
	assert.Equal(t, "node_added", event)
	assert.JSONEq(t, `{"type":"node_added","payload":{"id":"node_0"}}`, data)
}

func TestHubBroadcast(t *testing.T) {
	h, srv, _ := startHub(t, nil)

	r1, close1 := connect(t, h, srv.URL)
	defer close1()
	r2, close2 := connect(t, h, srv.URL)
	defer close2()

	h.Broadcast(service.Event{Type: service.EventSolverStatus})
	for _, r := range []*bufio.Reader{r1, r2} {
		event, _ := nextFrame(t, r)
		assert.Equal(t, "solver_status", event)
	}
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	h, srv, _ := startHub(t, nil)

	_, closeConn := connect(t, h, srv.URL)
	closeConn()
	assert.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubKeepAlive(t *testing.T) {
	h, srv, _ := startHub(t, nil, WithKeepAlive(20*time.Millisecond))

	r, closeConn := connect(t, h, srv.URL)
	defer closeConn()

	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == ": keepalive\n" {
			return
		}
	}
}

func TestHubStopClosesClients(t *testing.T) {
	h, srv, cancel := startHub(t, nil)

	r, closeConn := connect(t, h, srv.URL)
	defer closeConn()

	cancel()
	for {
		if _, err := r.ReadString('\n'); err != nil {
			break
		}
	}
	assert.Equal(t, 0, h.ClientCount())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
