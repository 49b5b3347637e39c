package hub

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/muurk/videohub/internal/logging"
)

const (
	// DefaultPort is the Videohub Ethernet protocol port
	DefaultPort = 9990

	// DefaultDialTimeout bounds connection establishment
	DefaultDialTimeout = 5 * time.Second

	// DefaultInitialTimeout is how long a receive waits for the first byte
	DefaultInitialTimeout = 250 * time.Millisecond

	// DefaultFollowupTimeout is the idle window once bytes have started arriving
	DefaultFollowupTimeout = 80 * time.Millisecond

	// DefaultFetchInitialTimeout is the first-byte window used for read commands
	DefaultFetchInitialTimeout = 500 * time.Millisecond

	// DefaultAckTimeout bounds the single read that follows a route directive
	DefaultAckTimeout = 100 * time.Millisecond

	// ReadChunkSize is the size of each socket read
	ReadChunkSize = 8 * 1024
)

// DialFunc opens a connection to address. It matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Conn is a single Videohub session. It is not safe for concurrent use.
type Conn struct {
	conn net.Conn
	addr string
}

// Address formats host and port as a dialable address
func Address(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Dial connects to the hub at host:port. A nil dial uses a net.Dialer with
// DefaultDialTimeout.
func Dial(ctx context.Context, dial DialFunc, host string, port int) (*Conn, error) {
	addr := Address(host, port)
	if dial == nil {
		d := &net.Dialer{Timeout: DefaultDialTimeout}
		dial = d.DialContext
	}

	nc, err := dial(ctx, "tcp", addr)
	if err != nil {
		logging.LogConnection(addr, "connect_failed")
		return nil, NewConnectError(addr, err)
	}

	logging.LogConnection(addr, "connected")
	return &Conn{conn: nc, addr: addr}, nil
}

// RemoteAddr returns the address this connection was dialed with
func (c *Conn) RemoteAddr() string {
	return c.addr
}

// Close closes the underlying socket
func (c *Conn) Close() error {
	logging.LogConnection(c.addr, "closed")
	return c.conn.Close()
}

// Send writes all of data, looping over short writes.
func (c *Conn) Send(data []byte) error {
	logging.LogRawBytes("Sending", data)

	for written := 0; written < len(data); {
		n, err := c.conn.Write(data[written:])
		if err != nil {
			return NewSendError("write failed", -1, err)
		}
		if n == 0 {
			return NewSendError("write made no progress", -1, nil)
		}
		written += n
	}
	return nil
}

// ReceiveUntilIdle collects a reply whose end is inferred from silence.
//
// It waits up to initial for the first byte. Once data arrives, each
// further read waits up to followup; the reply ends when a window passes
// with no bytes or the hub closes the connection. Neither case is an
// error, and an empty result means the hub had nothing to say. Any other
// read failure is returned with the bytes collected so far.
func (c *Conn) ReceiveUntilIdle(initial, followup time.Duration) ([]byte, error) {
	var reply []byte
	buf := make([]byte, ReadChunkSize)
	wait := initial

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
			return reply, NewReceiveError("cannot set read deadline", err)
		}

		n, err := c.conn.Read(buf)
		if n > 0 {
			reply = append(reply, buf[:n]...)
			wait = followup
		}
		if err != nil {
			if isIdle(err) {
				break
			}
			logging.LogRawBytes("Received (partial)", reply)
			return reply, NewReceiveError("read failed", err)
		}
	}

	logging.LogRawBytes("Received", reply)
	return reply, nil
}

// ReadOnce performs one bounded read. Timeout and EOF yield no data and no
// error.
func (c *Conn) ReadOnce(timeout time.Duration) ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, NewReceiveError("cannot set read deadline", err)
	}

	buf := make([]byte, ReadChunkSize)
	n, err := c.conn.Read(buf)
	if err != nil && !isIdle(err) {
		return buf[:n], NewReceiveError("read failed", err)
	}
	if n > 0 {
		logging.LogRawBytes("Received", buf[:n])
	}
	return buf[:n], nil
}
