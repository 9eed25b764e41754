package protocol

import (
	"bufio"
	"context"
	"net"

	"github.com/google/uuid"

	"winsome/internal/logging"
	"winsome/internal/wire"
)

// Server owns the main TCP listener. Each accepted connection gets its own
// goroutine and a fresh connection identity; a client's requests are
// processed strictly in the order sent.
type Server struct {
	addr    string
	handler *Handler
	logger  logging.Logger
}

func NewServer(addr string, handler *Handler, logger logging.Logger) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger.With("module", "server"),
	}
}

// Run accepts connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping server")
		listener.Close()
	}()

	s.logger.Info(ctx, "accepting connections", "addr", s.addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

// handleConn runs the per-connection loop: read one framed request, dispatch
// it, frame the response back. Transport failures tear the connection down,
// destroying any session bound to it.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	log := s.logger.With("conn_id", connID, "remote", conn.RemoteAddr().String())
	log.Debug(ctx, "connection accepted")

	defer func() {
		if username, had := s.handler.Teardown(connID); had {
			log.Info(ctx, "session closed on disconnect", "user", username)
		}
		conn.Close()
		log.Debug(ctx, "connection closed")
	}()

	r := bufio.NewReader(conn)
	for {
		msg, err := wire.ReadMessage(r)
		if err != nil {
			return
		}
		resp := s.handler.Handle(ctx, connID, msg)
		if err := wire.WriteMessage(conn, resp); err != nil {
			return
		}
	}
}
