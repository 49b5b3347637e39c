package hub

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/logging"
)

// Read command codes. Each is sent as a single byte.
const (
	CmdPreamble byte = 0x00
	CmdInputs   byte = 0x01
	CmdOutputs  byte = 0x02
	CmdRouting  byte = 0x03
)

// RouteCommandFormat is the text block that routes one output
const RouteCommandFormat = "VIDEO OUTPUT ROUTING:\n%d %d\n\n"

var fetchSequence = []struct {
	name string
	code byte
}{
	{"preamble", CmdPreamble},
	{"inputs", CmdInputs},
	{"outputs", CmdOutputs},
	{"routing", CmdRouting},
}

// Client talks to one Videohub. Every Fetch and Apply opens its own
// connection and closes it before returning.
type Client struct {
	// Host is the hub IP address or hostname
	Host string

	// Port is the hub control port (default 9990)
	Port int

	// Dial opens the connection; nil means a net.Dialer with DialTimeout
	Dial DialFunc

	// DialTimeout bounds connection establishment when Dial is nil
	DialTimeout time.Duration

	// FetchInitialTimeout is the first-byte window after each read command
	FetchInitialTimeout time.Duration

	// InitialTimeout is the first-byte window for the apply greeting
	InitialTimeout time.Duration

	// FollowupTimeout is the idle window once a reply has started
	FollowupTimeout time.Duration

	// AckTimeout bounds the single read after each route directive
	AckTimeout time.Duration

	// DrainGreeting reads and discards the unsolicited status dump before applying
	DrainGreeting bool

	// Policy controls handling of malformed records
	Policy ParsePolicy
}

// NewClient creates a client for the hub at host:port with default timings
func NewClient(host string, port int) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return &Client{
		Host:                host,
		Port:                port,
		DialTimeout:         DefaultDialTimeout,
		FetchInitialTimeout: DefaultFetchInitialTimeout,
		InitialTimeout:      DefaultInitialTimeout,
		FollowupTimeout:     DefaultFollowupTimeout,
		AckTimeout:          DefaultAckTimeout,
		DrainGreeting:       true,
		Policy:              Lenient,
	}
}

// Address returns host:port
func (c *Client) Address() string {
	return Address(c.Host, c.Port)
}

func (c *Client) connect(ctx context.Context) (*Conn, error) {
	if err := ValidateTarget(c.Host, c.Port); err != nil {
		return nil, err
	}
	dial := c.Dial
	if dial == nil {
		timeout := c.DialTimeout
		if timeout <= 0 {
			timeout = DefaultDialTimeout
		}
		dial = (&net.Dialer{Timeout: timeout}).DialContext
	}
	return Dial(ctx, dial, c.Host, c.Port)
}

// Replies holds the raw text of the four read commands
type Replies struct {
	Preamble string
	Inputs   string
	Outputs  string
	Routing  string
}

// Joined returns the four replies separated by newlines
func (r Replies) Joined() string {
	return strings.Join([]string{r.Preamble, r.Inputs, r.Outputs, r.Routing}, "\n")
}

// SectionStats reports parser results for each section
type SectionStats struct {
	Inputs  ParseStats
	Outputs ParseStats
	Routing ParseStats
}

// Skipped returns the total number of skipped records
func (s SectionStats) Skipped() int {
	return s.Inputs.Skipped + s.Outputs.Skipped + s.Routing.Skipped
}

// FetchResult is everything learned from one read of the hub
type FetchResult struct {
	State    *State
	Preamble string
	Replies  Replies
	Stats    SectionStats
	Info     DeviceInfo
	Locks    map[int]string

	// Fallback lists the sections taken from the joined buffer because
	// their own command returned nothing.
	Fallback []string
}

// Fetch reads labels and routing from the hub.
//
// The four read commands are always sent in order over one connection even
// when an earlier reply is empty. A section whose own reply is empty is
// recovered from the joined replies. The returned State is newly built, so
// a failed fetch never touches a state the caller already holds.
func (c *Client) Fetch(ctx context.Context) (*FetchResult, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	texts := make([]string, len(fetchSequence))
	for i, cmd := range fetchSequence {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logging.LogCommand(conn.RemoteAddr(), cmd.name, cmd.code)
		if err := conn.Send([]byte{cmd.code}); err != nil {
			return nil, fmt.Errorf("%s command: %w", cmd.name, err)
		}

		reply, err := conn.ReceiveUntilIdle(c.FetchInitialTimeout, c.FollowupTimeout)
		if err != nil {
			return nil, fmt.Errorf("%s reply: %w", cmd.name, err)
		}
		texts[i] = string(reply)
	}

	replies := Replies{
		Preamble: texts[0],
		Inputs:   texts[1],
		Outputs:  texts[2],
		Routing:  texts[3],
	}
	result, err := c.assemble(replies)
	if err != nil {
		return nil, err
	}
	result.State.Source = conn.RemoteAddr()

	logging.Info("Hub read",
		zap.String("remote_addr", conn.RemoteAddr()),
		zap.Int("inputs", len(result.State.InputLabels)),
		zap.Int("outputs", len(result.State.OutputLabels)),
		zap.Int("routes", len(result.State.Routing)),
		zap.Int("skipped", result.Stats.Skipped()),
		zap.Strings("fallback", result.Fallback),
	)
	return result, nil
}

// assemble parses the four replies into a FetchResult
func (c *Client) assemble(r Replies) (*FetchResult, error) {
	joined := r.Joined()
	result := &FetchResult{Preamble: r.Preamble, Replies: r}

	section := func(name, own, marker string) string {
		if own != "" {
			if strings.Contains(own, marker) {
				return ExtractSection(own, marker, SectionEndMarkers)
			}
			return own
		}
		result.Fallback = append(result.Fallback, name)
		return ExtractSection(joined, marker, SectionEndMarkers)
	}

	inputsText := section("inputs", r.Inputs, MarkerInputLabels)
	outputsText := section("outputs", r.Outputs, MarkerOutputLabels)
	routingText := section("routing", r.Routing, MarkerRouting)

	state := NewState()
	var err error
	if state.InputLabels, result.Stats.Inputs, err = ParseLabels(Tokenize(inputsText), c.Policy); err != nil {
		return nil, fmt.Errorf("input labels: %w", err)
	}
	if state.OutputLabels, result.Stats.Outputs, err = ParseLabels(Tokenize(outputsText), c.Policy); err != nil {
		return nil, fmt.Errorf("output labels: %w", err)
	}
	if state.Routing, result.Stats.Routing, err = ParseRouting(Tokenize(routingText), c.Policy); err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	result.State = state

	result.Info = ParseDeviceInfo(r.Preamble)
	result.Locks = ParseLocks(ExtractSection(joined, MarkerLocks, SectionEndMarkers))

	return result, nil
}

// RouteOutcome is the result of sending one route directive
type RouteOutcome struct {
	Output      int
	Input       int
	OutputLabel string
	InputLabel  string
	Sent        bool
	Err         error  // set when Sent is false
	Ack         string // whatever the hub replied, possibly empty
}

// ApplyResult collects the per-output outcomes of an Apply
type ApplyResult struct {
	Address  string
	Outcomes []RouteOutcome
}

// NothingToApply reports that the routing table was empty
func (r *ApplyResult) NothingToApply() bool {
	return len(r.Outcomes) == 0
}

// Succeeded returns the number of routes sent
func (r *ApplyResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Sent {
			n++
		}
	}
	return n
}

// Failed returns the outcomes whose send failed
func (r *ApplyResult) Failed() []RouteOutcome {
	var failed []RouteOutcome
	for _, o := range r.Outcomes {
		if !o.Sent {
			failed = append(failed, o)
		}
	}
	return failed
}

// RouteCallback is invoked after each route directive. index is 0-based
// within total.
type RouteCallback func(index, total int, outcome RouteOutcome)

// RouteCommand renders the directive that routes input to output
func RouteCommand(output, input int) []byte {
	return fmt.Appendf(nil, RouteCommandFormat, output, input)
}

// Apply sends state's routing table to the hub, one directive per output in
// ascending output order.
//
// Labels are not sent; they only decorate the outcomes. A failed send is
// recorded against its output and the remaining routes are still sent. A
// missing acknowledgement is not a failure. Nothing is retried or rolled
// back. An empty routing table returns an empty result without connecting.
func (c *Client) Apply(ctx context.Context, state *State, onRoute RouteCallback) (*ApplyResult, error) {
	result := &ApplyResult{Address: c.Address()}
	if state == nil || len(state.Routing) == 0 {
		return result, nil
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if c.DrainGreeting {
		greeting, err := conn.ReceiveUntilIdle(c.InitialTimeout, c.FollowupTimeout)
		if err != nil {
			logging.Warn("Greeting not drained", zap.Error(err))
		} else {
			logging.Debug("Greeting drained", zap.Int("length", len(greeting)))
		}
	}

	outputs := state.SortedOutputs()
	for i, out := range outputs {
		in := state.Routing[out]
		outcome := RouteOutcome{
			Output:      out,
			Input:       in,
			OutputLabel: state.OutputLabel(out),
			InputLabel:  state.InputLabel(in),
		}

		if err := ctx.Err(); err != nil {
			outcome.Err = err
		} else if err := conn.Send(RouteCommand(out, in)); err != nil {
			if devErr, ok := asDeviceError(err); ok {
				devErr.Output = out
			}
			outcome.Err = err
		} else {
			outcome.Sent = true
			ack, err := conn.ReadOnce(c.AckTimeout)
			if err != nil {
				logging.Debug("No acknowledgement", zap.Int("output", out), zap.Error(err))
			}
			outcome.Ack = string(ack)
		}

		logging.LogRoute(conn.RemoteAddr(), out, in, outcome.Sent, outcome.Ack)
		result.Outcomes = append(result.Outcomes, outcome)
		if onRoute != nil {
			onRoute(i, len(outputs), outcome)
		}
	}

	return result, nil
}
