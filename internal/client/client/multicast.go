package client

import (
	"context"
	"net"
)

// ListenRewards joins the reward multicast group and reports every datagram
// through onMessage until ctx is cancelled. Delivery is best effort; a
// client that joins late simply misses earlier announcements.
func ListenRewards(ctx context.Context, addr string, onMessage func(string)) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenMulticastUDP("udp", nil, udpAddr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 1024)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		onMessage(string(buf[:n]))
	}
}
