// Package hubtest provides an in-process Videohub for protocol tests,
// in the spirit of net/http/httptest.
package hubtest

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/muurk/videohub/internal/hub"
)

// Route is one routing directive received by the server
type Route struct {
	Output int
	Input  int
}

// Server is a scripted Videohub listening on 127.0.0.1.
//
// Single command bytes 0x00-0x03 are answered with the preamble, input
// labels, output labels and routing sections rendered from State, unless
// SetReply overrides them. "VIDEO OUTPUT ROUTING:" blocks update State and
// are acknowledged with "ACK".
type Server struct {
	// Model is reported in the preamble
	Model string

	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	greeting string
	replies  map[byte]string
	noAck    bool
	state    *hub.State
	routes   []Route
	conns    int
	active   map[net.Conn]struct{}
}

// NewServer starts a server holding a copy of state
func NewServer(state *hub.State) *Server {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(fmt.Sprintf("hubtest: failed to listen: %v", err))
	}
	if state == nil {
		state = hub.NewState()
	}

	s := &Server{
		replies:  make(map[byte]string),
		Model:    "Blackmagic Smart Videohub 12 x 12",
		listener: ln,
		state:    state.Clone(),
		active:   make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.serve()
	return s
}

// Host returns the listening host
func (s *Server) Host() string {
	return s.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listening port
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Addr returns host:port
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the listener, drops open connections and waits for the
// handlers to return
func (s *Server) Close() {
	_ = s.listener.Close()
	s.mu.Lock()
	for c := range s.active {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// SetGreeting sets text written as soon as a client connects
func (s *Server) SetGreeting(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.greeting = text
}

// SetReply overrides the reply to a command byte. An empty string makes
// the server stay silent for that command.
func (s *Server) SetReply(code byte, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[code] = text
}

// SetNoAck suppresses the acknowledgement after route blocks
func (s *Server) SetNoAck(noAck bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noAck = noAck
}

// State returns a copy of the current routing state
func (s *Server) State() *hub.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Routes returns every route directive received, in arrival order
func (s *Server) Routes() []Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Route(nil), s.routes...)
}

// Connections returns how many clients have connected
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns
}

// ResetRoutes forgets the recorded route directives
func (s *Server) ResetRoutes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = nil
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns++
		s.active[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.active, conn)
		s.mu.Unlock()
	}()

	s.mu.Lock()
	greeting := s.greeting
	s.mu.Unlock()

	if greeting != "" {
		if _, err := io.WriteString(conn, greeting); err != nil {
			return
		}
	}

	var pending []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			var reply []byte
			reply, pending = s.process(pending)
			if len(reply) > 0 {
				if _, werr := conn.Write(reply); werr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

// process consumes complete requests from pending and returns the reply
// bytes plus any incomplete remainder.
func (s *Server) process(pending []byte) ([]byte, []byte) {
	var out bytes.Buffer
	for len(pending) > 0 {
		if pending[0] <= hub.CmdRouting {
			out.WriteString(s.reply(pending[0]))
			pending = pending[1:]
			continue
		}

		end := bytes.Index(pending, []byte("\n\n"))
		if end < 0 {
			break
		}
		block := string(pending[:end])
		pending = pending[end+2:]
		out.WriteString(s.handleBlock(block))
	}
	return out.Bytes(), pending
}

func (s *Server) reply(code byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.replies[code]; ok {
		return r
	}

	switch code {
	case hub.CmdPreamble:
		return s.preambleLocked()
	case hub.CmdInputs:
		return labelSection(hub.MarkerInputLabels, s.state.InputLabels)
	case hub.CmdOutputs:
		return labelSection(hub.MarkerOutputLabels, s.state.OutputLabels)
	case hub.CmdRouting:
		return routingSection(s.state.Routing)
	}
	return ""
}

func (s *Server) preambleLocked() string {
	var b strings.Builder
	b.WriteString("PROTOCOL PREAMBLE:\nVersion: 2.8\n\n")
	b.WriteString("VIDEOHUB DEVICE:\nDevice present: true\n")
	fmt.Fprintf(&b, "Model name: %s\n", s.Model)
	fmt.Fprintf(&b, "Video inputs: %d\n", len(s.state.InputLabels))
	fmt.Fprintf(&b, "Video outputs: %d\n\n", len(s.state.OutputLabels))
	return b.String()
}

func (s *Server) handleBlock(block string) string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != hub.MarkerRouting {
		return "NAK\n\n"
	}

	var applied []Route
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "NAK\n\n"
		}
		out, err1 := strconv.Atoi(fields[0])
		in, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return "NAK\n\n"
		}
		applied = append(applied, Route{Output: out, Input: in})
	}

	s.mu.Lock()
	for _, r := range applied {
		s.state.Routing[r.Output] = r.Input
	}
	s.routes = append(s.routes, applied...)
	noAck := s.noAck
	s.mu.Unlock()

	if noAck {
		return ""
	}
	return "ACK\n\n"
}

func labelSection(marker string, labels map[int]string) string {
	var b strings.Builder
	b.WriteString(marker + "\n")
	for _, i := range sortedKeys(labels) {
		fmt.Fprintf(&b, "%d %s\n", i, labels[i])
	}
	b.WriteString("\n")
	return b.String()
}

func routingSection(routing map[int]int) string {
	var b strings.Builder
	b.WriteString(hub.MarkerRouting + "\n")
	for _, out := range sortedKeys(routing) {
		fmt.Fprintf(&b, "%d %d\n", out, routing[out])
	}
	b.WriteString("\n")
	return b.String()
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// SampleState returns a small router with four inputs and outputs
func SampleState() *hub.State {
	s := hub.NewState()
	for i, name := range []string{"CAM1", "CAM2", "GFX", "PLAYOUT"} {
		s.InputLabels[i] = name
	}
	for i, name := range []string{"PGM", "PVW", "REC", "MON"} {
		s.OutputLabels[i] = name
	}
	s.Routing[0] = 0
	s.Routing[1] = 1
	s.Routing[2] = 2
	s.Routing[3] = 3
	return s
}
