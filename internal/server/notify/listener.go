package notify

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"

	"winsome/internal/logging"
	"winsome/internal/wire"
)

// RegisterFunc performs a registration and returns the user-facing reply
// string. The listener stays agnostic of the store's error taxonomy.
type RegisterFunc func(username, password string, tags []string) string

// UserExistsFunc reports whether a username is registered.
type UserExistsFunc func(username string) bool

// Listener is the callback transport: a second TCP listener through which
// clients register accounts and subscribe to follower updates. It speaks
// the same framing as the main protocol.
//
// Accepted verbs:
//
//	register <user> <pass> [tag ...]
//	subscribe <user>
//
// After a successful subscribe the connection receives "+user"/"-user"
// frames until it drops.
type Listener struct {
	addr     string
	registry *Registry
	register RegisterFunc
	exists   UserExistsFunc
	logger   logging.Logger
}

func NewListener(addr string, registry *Registry, register RegisterFunc, exists UserExistsFunc, logger logging.Logger) *Listener {
	return &Listener{
		addr:     addr,
		registry: registry,
		register: register,
		exists:   exists,
		logger:   logger.With("module", "callback"),
	}
}

// Run accepts connections until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		l.logger.Info(ctx, "stopping callback listener")
		listener.Close()
	}()

	l.logger.Info(ctx, "callback listener accepting connections", "addr", l.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go l.handle(ctx, conn)
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sub := &connSubscriber{conn: conn}
	bound := ""
	defer func() {
		if bound != "" {
			l.registry.Unsubscribe(bound, sub)
		}
	}()

	r := bufio.NewReader(conn)
	for {
		msg, err := wire.ReadMessage(r)
		if err != nil {
			return
		}
		fields := strings.Fields(msg)
		if len(fields) == 0 {
			continue
		}

		var reply string
		switch fields[0] {
		case "register":
			if len(fields) < 3 {
				reply = "error: usage: register <user> <pass> [tag ...]"
				break
			}
			reply = l.register(fields[1], fields[2], fields[3:])

		case "subscribe":
			if len(fields) != 2 {
				reply = "error: usage: subscribe <user>"
				break
			}
			username := strings.ToLower(fields[1])
			if !l.exists(username) {
				reply = "error: user not found"
				break
			}
			if bound != "" && bound != username {
				l.registry.Unsubscribe(bound, sub)
			}
			l.registry.Subscribe(username, sub)
			bound = username
			reply = "ok"

		default:
			reply = "error: unrecognized command"
		}

		if err := sub.Push(reply); err != nil {
			return
		}
	}
}

// connSubscriber frames pushes onto the callback connection. The mutex
// serializes replies written by the handler with follower updates pushed
// from other goroutines.
type connSubscriber struct {
	mu   sync.Mutex
	conn net.Conn
}

func (s *connSubscriber) Push(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wire.WriteMessage(s.conn, msg)
}
