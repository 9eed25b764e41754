// Package client implements the CLI's server connections: the framed
// request/response channel, the follower-callback subscription, and the
// reward multicast listener.
package client

import (
	"bufio"
	"net"
	"sync"

	"winsome/internal/wire"
)

// Conn is the framed request/response connection to the main endpoint.
// Requests are serialized; the server answers them strictly in order.
type Conn struct {
	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the main server endpoint.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewConn(c), nil
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{conn: c, r: bufio.NewReader(c)}
}

// Do sends one request and waits for its response.
func (c *Conn) Do(msg string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := wire.WriteMessage(c.conn, msg); err != nil {
		return "", err
	}
	return wire.ReadMessage(c.r)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
