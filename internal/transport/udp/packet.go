// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

/*
UDP Packet Structure (BigEndian)

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |   Magnitude   |       Magnitudes        |
|      (uint32)     |  (int64, ns since     |     Count     |      (N * float32)      |
|                   |        epoch)         |    (uint16)   |                         |
+-------------------+-----------------------+---------------+-------------------------+
*/

// HeaderSize is the number of bytes before the magnitudes.
const HeaderSize = 4 + 8 + 2

// MaxMagnitudes is the largest count the header can carry.
const MaxMagnitudes = math.MaxUint16

// ErrShortPacket is returned when a datagram is smaller than its header claims.
var ErrShortPacket = errors.New("short UDP packet")

// Packet is a decoded datagram.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Magnitudes []float32
}

// EncodePacket packs magnitudes as float32 behind the header. Series longer
// than MaxMagnitudes are rejected.
func EncodePacket(seq uint32, timestamp int64, magnitudes []float64) ([]byte, error) {
	if len(magnitudes) > MaxMagnitudes {
		return nil, fmt.Errorf("%d magnitudes exceed packet limit %d", len(magnitudes), MaxMagnitudes)
	}

	f32 := make([]float32, len(magnitudes))
	for i, v := range magnitudes {
		f32[i] = float32(v)
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize+4*len(f32)))
	// Chain error checks for cleaner code.
	err := binary.Write(buf, binary.BigEndian, seq)
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, uint16(len(f32)))
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, f32)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pack UDP packet: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePacket parses a datagram produced by EncodePacket.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(data))
	}
	count := int(binary.BigEndian.Uint16(data[12:14]))
	if len(data) < HeaderSize+4*count {
		return Packet{}, fmt.Errorf("%w: %d bytes for %d magnitudes", ErrShortPacket, len(data), count)
	}

	p := Packet{
		Sequence:   binary.BigEndian.Uint32(data[0:4]),
		Timestamp:  int64(binary.BigEndian.Uint64(data[4:12])),
		Magnitudes: make([]float32, count),
	}
	for i := range p.Magnitudes {
		off := HeaderSize + 4*i
		p.Magnitudes[i] = math.Float32frombits(binary.BigEndian.Uint32(data[off : off+4]))
	}
	return p, nil
}
