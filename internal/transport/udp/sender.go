// SPDX-License-Identifier: MIT
//
// Package udp sends spectrum magnitudes as compact binary datagrams.
package udp

import (
	"fmt"
	"net"
	"sync"
	"time"

	applog "wavemath/internal/log"
	"wavemath/internal/transport"
)

// UDPSender handles sending data packets over UDP. As a transport.Transport
// it packs frames that carry magnitudes and ignores everything else.
type UDPSender struct {
	conn       *net.UDPConn
	targetAddr *net.UDPAddr
	interval   time.Duration
	mu         sync.Mutex // Protects conn, sequence and lastSent
	closed     bool
	sequence   uint32
	lastSent   time.Time
	now        func() time.Time
}

// NewUDPSender creates a new UDPSender targeting the specified address.
// The address should be in the format "host:port", e.g., "127.0.0.1:9090".
// Frames arriving less than interval after the previous packet are dropped;
// a zero interval sends every frame.
func NewUDPSender(targetAddress string, interval time.Duration) (*UDPSender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	// We don't need to bind to a specific local port for sending,
	// so we use nil for the local address in DialUDP.
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDP Sender: Connection established to %s", conn.RemoteAddr().String())

	return &UDPSender{
		conn:       conn,
		targetAddr: udpAddr,
		interval:   max(interval, 0),
		now:        time.Now,
	}, nil
}

// Send packs a transport.MagnitudeFrame into a datagram. Raw []byte payloads
// are sent as they are. Other frame types are skipped.
func (s *UDPSender) Send(data any) error {
	switch frame := data.(type) {
	case []byte:
		return s.write(frame)
	case transport.MagnitudeFrame:
		return s.sendMagnitudes(frame.PlotMagnitudes())
	default:
		applog.Debugf("UDP Sender: Skipping %T, no magnitudes", data)
		return nil
	}
}

func (s *UDPSender) sendMagnitudes(magnitudes []float64) error {
	s.mu.Lock()
	now := s.now()
	if s.interval > 0 && !s.lastSent.IsZero() && now.Sub(s.lastSent) < s.interval {
		s.mu.Unlock()
		applog.Debugf("UDP Sender: Dropping frame inside send interval %s", s.interval)
		return nil
	}
	seq := s.sequence
	s.sequence++
	s.lastSent = now
	s.mu.Unlock()

	packet, err := EncodePacket(seq, now.UnixNano(), magnitudes)
	if err != nil {
		return err
	}
	if err := s.write(packet); err != nil {
		return err
	}
	applog.Debugf("UDP Sender: Sent packet %d (%d bytes)", seq, len(packet))
	return nil
}

func (s *UDPSender) write(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return transport.ErrClosed
	}
	// Keep the lock during the write operation to prevent concurrent Close/Write issues.
	_, err := s.conn.Write(data)
	s.mu.Unlock()

	if err != nil {
		applog.Warnf("UDP Sender: Error sending packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Already closed
	}

	s.closed = true
	if s.conn != nil {
		applog.Debugf("UDP Sender: Closing connection to %s", s.conn.RemoteAddr().String())
		err := s.conn.Close()
		s.conn = nil // Prevent further use
		if err != nil {
			return fmt.Errorf("failed to close UDP connection: %w", err)
		}
	}
	return nil
}

// Ensure UDPSender satisfies the transport interface at compile time.
var _ transport.Transport = (*UDPSender)(nil)
