// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"earshot/internal/log"
)

// MaxDatagramSize is the largest payload Send accepts. Timeline packets stay
// far below it; larger writes would be fragmented or dropped by the network.
const MaxDatagramSize = 65507

var (
	// ErrSenderClosed is returned by Send after Close.
	ErrSenderClosed = errors.New("UDP sender is closed")
	// ErrPacketTooLarge is returned for payloads above MaxDatagramSize.
	ErrPacketTooLarge = errors.New("UDP packet too large")
)

var logger = log.New("udp")

// UDPSender writes timeline packets to one target address.
type UDPSender struct {
	target *net.UDPAddr

	mu   sync.Mutex // guards conn
	conn *net.UDPConn

	packets atomic.Uint64
	bytes   atomic.Uint64
}

// NewUDPSender dials targetAddress ("host:port").
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP target %q: %w", targetAddress, err)
	}

	logger.Infof("sending timelines to %s", conn.RemoteAddr())
	return &UDPSender{target: addr, conn: conn}, nil
}

// Target returns the resolved destination address.
func (s *UDPSender) Target() *net.UDPAddr { return s.target }

// Stats returns the number of packets and bytes written so far.
func (s *UDPSender) Stats() (packets, bytes uint64) {
	return s.packets.Load(), s.bytes.Load()
}

// Send writes packet as a single datagram. It is safe for concurrent use.
func (s *UDPSender) Send(packet []byte) error {
	if len(packet) > MaxDatagramSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(packet))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrSenderClosed
	}

	n, err := s.conn.Write(packet)
	if err != nil {
		logger.Warnf("error sending packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	s.packets.Add(1)
	s.bytes.Add(uint64(n))
	return nil
}

// Close closes the connection. Calling it again is a no-op.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	packets, bytes := s.Stats()
	logger.Debugf("closing connection to %s after %d packets (%d bytes)", s.target, packets, bytes)

	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ PacketSender = (*UDPSender)(nil)
