package preview

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/dilithium/internal/scene"
	"github.com/vango-dev/dilithium/pkg/protocol"
	"github.com/vango-dev/dilithium/pkg/telemetry"
)

const shuffle = `
name: shuffle
initial:
  type: div
  children:
    - component: Counter
      key: c
      props: {label: n, start: 1}
    - component: List
      key: l
      props:
        items: [a, b, c]
steps:
  - render:
      type: div
      children:
        - component: Counter
          key: c
          props: {label: n}
        - component: List
          key: l
          props:
            items: [c, a, d]
  - setState:
      path: [".$c"]
      state: {count: 7}
`

func newTestServer(t *testing.T, src string) (*Server, *httptest.Server, *prometheus.Registry) {
	t.Helper()
	sc, err := scene.Parse([]byte(src), scene.FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	reg := prometheus.NewRegistry()
	s, err := New(Options{
		Scene:        sc,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:      telemetry.NewMetrics(telemetry.WithRegistry(reg)),
		Gatherer:     reg,
		StepInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, reg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestFragment(t *testing.T) {
	_, ts, _ := newTestServer(t, shuffle)

	tests := []struct {
		query string
		want  string
	}{
		{"?step=0", `<div><span class="counter">n: 1</span><ul><li>a</li><li>b</li><li>c</li></ul></div>`},
		{"?step=1", `<div><span class="counter">n: 1</span><ul><li>c</li><li>a</li><li>d</li></ul></div>`},
		{"", `<div><span class="counter">n: 7</span><ul><li>c</li><li>a</li><li>d</li></ul></div>`},
		{"?step=99", `<div><span class="counter">n: 7</span><ul><li>c</li><li>a</li><li>d</li></ul></div>`},
	}
	for _, tt := range tests {
		status, body := get(t, ts.URL+"/html"+tt.query)
		if status != http.StatusOK || body != tt.want {
			t.Errorf("/html%s = %d %q, want %q", tt.query, status, body, tt.want)
		}
	}

	if status, _ := get(t, ts.URL+"/html?step=-1"); status != http.StatusBadRequest {
		t.Errorf("negative step status = %d, want 400", status)
	}
}

func TestPage(t *testing.T) {
	_, ts, _ := newTestServer(t, shuffle)

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{"<title>shuffle</title>", "<main><div>", "n: 7"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
}

func TestRenderFailure(t *testing.T) {
	_, ts, _ := newTestServer(t, `
initial: {type: div}
steps:
  - setState: {path: [], state: {x: 1}}
`)
	status, body := get(t, ts.URL+"/html")
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
	if !strings.Contains(body, "E009") {
		t.Errorf("body = %q, want E009", body)
	}
}

func TestMetricsRoute(t *testing.T) {
	_, ts, _ := newTestServer(t, shuffle)
	get(t, ts.URL+"/html")

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, `dilithium_operations_total{op="MOVE"} 1`) {
		t.Errorf("metrics missing move count:\n%s", body)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", mt)
	}
	f, err := protocol.DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	return f
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStream(t *testing.T) {
	_, ts, _ := newTestServer(t, shuffle)
	conn := dial(t, ts)

	first := readFrame(t, conn)
	if first.Type != protocol.FrameTree || first.Flags != protocol.FlagFinal|protocol.FlagResync {
		t.Fatalf("first frame = %v/%v, want final resync tree", first.Type, first.Flags)
	}
	tree, err := protocol.DecodeTree(first.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 1 || tree.Children[0].Tag != "div" {
		t.Errorf("tree = %+v", tree)
	}

	ops := readFrame(t, conn)
	if ops.Type != protocol.FrameOps {
		t.Fatalf("second frame type = %v, want ops", ops.Type)
	}
	batch, err := protocol.DecodeOps(ops.Payload)
	if err != nil {
		t.Fatal(err)
	}
	var kinds []string
	for _, op := range batch.Ops {
		kinds = append(kinds, op.Op.String()+" "+op.Key)
	}
	if got := strings.Join(kinds, "; "); got != "Move .$a; Insert .$d; Remove .$b" {
		t.Errorf("ops = %s", got)
	}
	for _, op := range batch.Ops {
		if op.Op == protocol.OpInsert && (op.Tree == nil || op.Tree.Tag != "li") {
			t.Errorf("insert tree = %+v", op.Tree)
		}
	}

	if f := readFrame(t, conn); f.Type != protocol.FrameTree {
		t.Errorf("step 1 closing frame type = %v", f.Type)
	}
	last := readFrame(t, conn)
	if last.Type != protocol.FrameTree {
		t.Fatalf("step 2 frame type = %v", last.Type)
	}
	tree, _ = protocol.DecodeTree(last.Payload)
	if got := tree.Children[0].Children[0].Text; got != "n: 7" {
		t.Errorf("counter text = %q, want n: 7", got)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("end of stream = %v, want normal closure", err)
	}
}

func TestStreamError(t *testing.T) {
	_, ts, _ := newTestServer(t, `
initial: {type: div}
steps:
  - setState: {path: [".$nope"], state: {x: 1}}
`)
	conn := dial(t, ts)

	if f := readFrame(t, conn); f.Type != protocol.FrameTree {
		t.Fatalf("first frame type = %v", f.Type)
	}
	f := readFrame(t, conn)
	if f.Type != protocol.FrameError {
		t.Fatalf("frame type = %v, want error", f.Type)
	}
	msg, err := protocol.DecodeError(f.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Code != "E143" || !strings.Contains(msg.Message, "no instance") {
		t.Errorf("error message = %+v", msg)
	}
}

func TestStopClosesStreams(t *testing.T) {
	s, ts, _ := newTestServer(t, shuffle)
	s.opts.StepInterval = time.Hour
	conn := dial(t, ts)
	readFrame(t, conn)

	deadline := time.Now().Add(time.Second)
	for s.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", s.ClientCount())
	}

	s.running = true
	s.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("stream should be closed after Stop()")
	}
}

func TestNewRequiresScene(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("New() error = %v, want ErrNoScene", err)
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) == 1 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("%s not gathered", name)
	return 0
}

func counterTotal(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func TestRequestsReleaseInstances(t *testing.T) {
	_, ts, reg := newTestServer(t, shuffle)

	for i := 0; i < 3; i++ {
		if status, _ := get(t, ts.URL+"/html"); status != http.StatusOK {
			t.Fatalf("/html status = %d", status)
		}
		if got := gaugeValue(t, reg, "dilithium_live_instances"); got != 0 {
			t.Errorf("live instances after request %d = %v, want 0", i+1, got)
		}
	}
	mounts := counterTotal(t, reg, "dilithium_mounts_total")
	if mounts == 0 {
		t.Fatal("no mounts recorded")
	}
	if got := counterTotal(t, reg, "dilithium_unmounts_total"); got != mounts {
		t.Errorf("unmounts = %v, want %v", got, mounts)
	}
}

func TestStreamReleasesInstances(t *testing.T) {
	_, ts, reg := newTestServer(t, shuffle)
	conn := dial(t, ts)

	for i := 0; i < 4; i++ {
		readFrame(t, conn)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("end of stream = %v, want normal closure", err)
	}
	if got := gaugeValue(t, reg, "dilithium_live_instances"); got != 0 {
		t.Errorf("live instances after stream = %v, want 0", got)
	}
}
