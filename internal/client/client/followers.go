package client

import (
	"bufio"
	"errors"
	"net"
	"sort"
	"strings"
	"sync"

	"winsome/internal/wire"
)

// Cache is the client-side follower list. It is seeded from the login reply
// and kept current by "+user"/"-user" pushes on the callback connection, so
// listing followers never asks the server.
type Cache struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func NewCache() *Cache {
	return &Cache{set: make(map[string]struct{})}
}

// Seed replaces the cached set with names.
func (c *Cache) Seed(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = make(map[string]struct{}, len(names))
	for _, n := range names {
		c.set[n] = struct{}{}
	}
}

// Apply folds one "+user"/"-user" push into the set. Anything else is
// ignored. It returns the push it applied, "" otherwise.
func (c *Cache) Apply(msg string) string {
	if len(msg) < 2 {
		return ""
	}
	name := msg[1:]
	c.mu.Lock()
	defer c.mu.Unlock()
	switch msg[0] {
	case '+':
		c.set[name] = struct{}{}
	case '-':
		delete(c.set, name)
	default:
		return ""
	}
	return msg
}

// List returns the cached followers, sorted.
func (c *Cache) List() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.set))
	for n := range c.set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Callback is the subscription connection carrying follower updates from
// the server to this client.
type Callback struct {
	conn net.Conn
	r    *bufio.Reader
}

// DialCallback connects to the follower-callback endpoint.
func DialCallback(addr string) (*Callback, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Callback{conn: c, r: bufio.NewReader(c)}, nil
}

// Subscribe binds this connection to username's follower updates. The
// server's reply is the first frame on the connection; pushes follow.
func (cb *Callback) Subscribe(username string) error {
	if err := wire.WriteMessage(cb.conn, "subscribe "+username); err != nil {
		return err
	}
	reply, err := wire.ReadMessage(cb.r)
	if err != nil {
		return err
	}
	if reply != "ok" {
		return errors.New(strings.TrimPrefix(reply, "error: "))
	}
	return nil
}

// Listen folds every incoming push into cache until the connection drops,
// reporting applied updates through onUpdate. Run it on its own goroutine
// after a successful Subscribe.
func (cb *Callback) Listen(cache *Cache, onUpdate func(string)) {
	for {
		msg, err := wire.ReadMessage(cb.r)
		if err != nil {
			return
		}
		if applied := cache.Apply(msg); applied != "" && onUpdate != nil {
			onUpdate(applied)
		}
	}
}

func (cb *Callback) Close() error {
	return cb.conn.Close()
}
