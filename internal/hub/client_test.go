package hub_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/hubtest"
)

func newTestClient(srv *hubtest.Server) *hub.Client {
	c := hub.NewClient(srv.Host(), srv.Port())
	c.FetchInitialTimeout = 150 * time.Millisecond
	c.InitialTimeout = 100 * time.Millisecond
	c.FollowupTimeout = 40 * time.Millisecond
	c.AckTimeout = 100 * time.Millisecond
	return c
}

func TestClient_Fetch(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()

	result, err := newTestClient(srv).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := hubtest.SampleState()
	if !result.State.Equal(want) {
		t.Errorf("Fetch() state = %+v, want %+v", result.State, want)
	}
	if result.State.Source != srv.Addr() {
		t.Errorf("Source = %q, want %q", result.State.Source, srv.Addr())
	}
	if got := result.Info.ModelName(); got != srv.Model {
		t.Errorf("ModelName() = %q, want %q", got, srv.Model)
	}
	if len(result.Fallback) != 0 {
		t.Errorf("Fallback = %v, want none", result.Fallback)
	}
	if !strings.HasPrefix(result.Preamble, "PROTOCOL PREAMBLE:") {
		t.Errorf("Preamble = %q", result.Preamble)
	}
	if srv.Connections() != 1 {
		t.Errorf("Connections() = %d, want 1", srv.Connections())
	}
}

func TestClient_Fetch_RoutingFallsBackToJoinedReplies(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()

	srv.SetReply(hub.CmdPreamble, "PROTOCOL PREAMBLE:\nVersion: 2.8\n\n"+
		"VIDEO OUTPUT ROUTING:\n0 3\n1 2\n\nVIDEO OUTPUT LOCKS:\n0 L\n1 U\n\n")
	srv.SetReply(hub.CmdRouting, "")

	result, err := newTestClient(srv).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := map[int]int{0: 3, 1: 2}
	if len(result.State.Routing) != len(want) {
		t.Fatalf("Routing = %v, want %v", result.State.Routing, want)
	}
	for out, in := range want {
		if result.State.Routing[out] != in {
			t.Errorf("Routing[%d] = %d, want %d", out, result.State.Routing[out], in)
		}
	}
	if !slices.Contains(result.Fallback, "routing") {
		t.Errorf("Fallback = %v, want routing", result.Fallback)
	}
	if result.Locks[0] != hub.LockLocked {
		t.Errorf("Locks[0] = %q, want %q", result.Locks[0], hub.LockLocked)
	}
	if result.Stats.Routing.Skipped != 0 {
		t.Errorf("Routing skipped = %d, want 0", result.Stats.Routing.Skipped)
	}
}

func TestClient_Fetch_QuietHub(t *testing.T) {
	srv := hubtest.NewServer(nil)
	defer srv.Close()
	for _, code := range []byte{hub.CmdPreamble, hub.CmdInputs, hub.CmdOutputs, hub.CmdRouting} {
		srv.SetReply(code, "")
	}

	c := newTestClient(srv)
	c.FetchInitialTimeout = 30 * time.Millisecond

	result, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v (quiet replies are not errors)", err)
	}
	if !result.State.IsEmpty() {
		t.Errorf("Expected empty state, got %+v", result.State)
	}
}

func TestClient_Fetch_StrictRejectsMalformed(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	srv.SetReply(hub.CmdInputs, "INPUT LABELS:\n0 CAM1\nnot a record\n\n")

	c := newTestClient(srv)
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("Lenient Fetch() error = %v", err)
	}

	c.Policy = hub.Strict
	_, err := c.Fetch(context.Background())
	if !hub.IsParseError(err) {
		t.Errorf("Strict Fetch() error = %v, want parse error", err)
	}
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	_, err = hub.NewClient("127.0.0.1", port).Fetch(context.Background())
	if !hub.IsConnectError(err) {
		t.Errorf("Fetch() error = %v, want connect error", err)
	}
}

func TestClient_Fetch_InvalidTarget(t *testing.T) {
	_, err := hub.NewClient("", 9990).Fetch(context.Background())
	if !hub.IsValidationError(err) {
		t.Errorf("Fetch() error = %v, want validation error", err)
	}
}

func TestClient_Apply(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	srv.SetGreeting("PROTOCOL PREAMBLE:\nVersion: 2.8\n\n")

	preset := hubtest.SampleState()
	preset.Routing = map[int]int{3: 0, 0: 2, 1: 1}

	var seen []int
	result, err := newTestClient(srv).Apply(context.Background(), preset, func(i, total int, o hub.RouteOutcome) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		seen = append(seen, o.Output)
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantRoutes := []hubtest.Route{{Output: 0, Input: 2}, {Output: 1, Input: 1}, {Output: 3, Input: 0}}
	if got := srv.Routes(); !slices.Equal(got, wantRoutes) {
		t.Errorf("Routes() = %v, want %v", got, wantRoutes)
	}
	if !slices.Equal(seen, []int{0, 1, 3}) {
		t.Errorf("callback order = %v, want [0 1 3]", seen)
	}
	if result.Succeeded() != 3 {
		t.Errorf("Succeeded() = %d, want 3", result.Succeeded())
	}
	for _, o := range result.Outcomes {
		if !strings.Contains(o.Ack, "ACK") {
			t.Errorf("output %d ack = %q, want ACK", o.Output, o.Ack)
		}
	}
	if result.Outcomes[0].InputLabel != "GFX" || result.Outcomes[0].OutputLabel != "PGM" {
		t.Errorf("labels = %q <- %q", result.Outcomes[0].OutputLabel, result.Outcomes[0].InputLabel)
	}
	if srv.State().Routing[0] != 2 {
		t.Errorf("hub routing[0] = %d, want 2", srv.State().Routing[0])
	}
}

func TestClient_Apply_Idempotent(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()

	preset := hubtest.SampleState()
	preset.Routing[0] = 3
	c := newTestClient(srv)

	first, err := c.Apply(context.Background(), preset, nil)
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	second, err := c.Apply(context.Background(), preset, nil)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}

	if len(first.Outcomes) != len(second.Outcomes) {
		t.Fatalf("outcome counts differ: %d vs %d", len(first.Outcomes), len(second.Outcomes))
	}
	for i := range first.Outcomes {
		a, b := first.Outcomes[i], second.Outcomes[i]
		if a.Output != b.Output || a.Input != b.Input || a.Sent != b.Sent || a.Ack != b.Ack {
			t.Errorf("outcome %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestClient_Apply_NoAckIsNotFailure(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	srv.SetNoAck(true)

	c := newTestClient(srv)
	c.AckTimeout = 20 * time.Millisecond

	result, err := c.Apply(context.Background(), hubtest.SampleState(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(result.Failed()) != 0 {
		t.Errorf("Failed() = %v, want none", result.Failed())
	}
}

func TestClient_Apply_NothingToApply(t *testing.T) {
	dials := 0
	c := hub.NewClient("192.168.1.248", hub.DefaultPort)
	c.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		dials++
		return nil, errors.New("should not dial")
	}

	result, err := c.Apply(context.Background(), hub.NewState(), nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !result.NothingToApply() {
		t.Error("Expected NothingToApply for empty routing")
	}
	if dials != 0 {
		t.Errorf("dialed %d times, want 0", dials)
	}
}

func TestClient_Apply_ConnectError(t *testing.T) {
	c := hub.NewClient("192.168.1.248", hub.DefaultPort)
	c.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, &net.OpError{Op: "dial", Net: network, Err: errors.New("unreachable")}
	}

	result, err := c.Apply(context.Background(), hubtest.SampleState(), nil)
	if !hub.IsConnectError(err) {
		t.Errorf("Apply() error = %v, want connect error", err)
	}
	if result != nil {
		t.Errorf("Expected no result on connect failure, got %+v", result)
	}
}

// failingConn fails writes of the route directive for one output and never
// sends anything back.
type failingConn struct {
	net.Conn
	failOutput int

	mu     sync.Mutex
	writes [][]byte
}

type quietError struct{}

func (quietError) Error() string   { return "i/o timeout" }
func (quietError) Timeout() bool   { return true }
func (quietError) Temporary() bool { return true }

func (c *failingConn) Write(p []byte) (int, error) {
	if bytes.HasPrefix(p, []byte("VIDEO OUTPUT ROUTING:\n"+strconv.Itoa(c.failOutput)+" ")) {
		return 0, errors.New("broken pipe")
	}
	c.mu.Lock()
	c.writes = append(c.writes, append([]byte(nil), p...))
	c.mu.Unlock()
	return len(p), nil
}

func (c *failingConn) Read(p []byte) (int, error)         { return 0, quietError{} }
func (c *failingConn) SetReadDeadline(time.Time) error    { return nil }
func (c *failingConn) Close() error                       { return nil }
func (c *failingConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *failingConn) SetWriteDeadline(t time.Time) error { return nil }

func TestClient_Apply_ContinuesAfterSendFailure(t *testing.T) {
	fake := &failingConn{failOutput: 3}
	c := hub.NewClient("192.168.1.248", hub.DefaultPort)
	c.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		return fake, nil
	}
	c.InitialTimeout = time.Millisecond
	c.AckTimeout = time.Millisecond

	preset := hub.NewState()
	for out := 0; out < 6; out++ {
		preset.Routing[out] = 5 - out
	}

	result, err := c.Apply(context.Background(), preset, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(result.Outcomes) != 6 {
		t.Fatalf("len(Outcomes) = %d, want 6", len(result.Outcomes))
	}
	for _, o := range result.Outcomes {
		if o.Output == 3 {
			if o.Sent {
				t.Error("Expected output 3 to fail")
			}
			if !hub.IsSendError(o.Err) {
				t.Errorf("output 3 error = %v, want send error", o.Err)
			}
			var devErr *hub.DeviceError
			if errors.As(o.Err, &devErr) && devErr.Output != 3 {
				t.Errorf("DeviceError.Output = %d, want 3", devErr.Output)
			}
			continue
		}
		if !o.Sent {
			t.Errorf("output %d not sent: %v", o.Output, o.Err)
		}
	}

	if len(fake.writes) != 5 {
		t.Fatalf("writes = %d, want 5", len(fake.writes))
	}
	for i, out := range []int{0, 1, 2, 4, 5} {
		if want := hub.RouteCommand(out, 5-out); !bytes.Equal(fake.writes[i], want) {
			t.Errorf("write %d = %q, want %q", i, fake.writes[i], want)
		}
	}
	if len(result.Failed()) != 1 {
		t.Errorf("Failed() = %d, want 1", len(result.Failed()))
	}
}

func TestRouteCommand(t *testing.T) {
	if got := string(hub.RouteCommand(4, 11)); got != "VIDEO OUTPUT ROUTING:\n4 11\n\n" {
		t.Errorf("RouteCommand() = %q", got)
	}
}
