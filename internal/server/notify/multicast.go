package notify

import (
	"context"
	"net"

	"winsome/internal/logging"
)

// Multicast broadcasts messages as UDP datagrams to a multicast group.
// Clients join the group and print whatever arrives; delivery is best
// effort and failures are logged, never fatal.
type Multicast struct {
	conn   *net.UDPConn
	group  string
	logger logging.Logger
}

func NewMulticast(addr string, logger logging.Logger) (*Multicast, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	return &Multicast{
		conn:   conn,
		group:  addr,
		logger: logger.With("module", "multicast"),
	}, nil
}

func (m *Multicast) Broadcast(msg string) {
	if _, err := m.conn.Write([]byte(msg)); err != nil {
		m.logger.Warn(context.Background(), "broadcast failed", "group", m.group, "error", err.Error())
	}
}

func (m *Multicast) Close() error {
	return m.conn.Close()
}

var _ Broadcaster = (*Multicast)(nil)
