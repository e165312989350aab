// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"spectro/internal/transport"
	"spectro/pkg/argb"
)

// HeaderSize is the fixed packet prefix before the colors.
const HeaderSize = 4 + 8 + 2

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Column sequence number  |
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Color Count       | uint16         | 2            | Number of colors (N)    |
| Colors            | []uint32       | N * 4        | Packed ARGB, low first  |
+-----------------------------------------------------------------------------+

Visual Layout:

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
+-------------------+-----------------------+---------------+-------------------------+
|  Sequence Number  |       Timestamp       |  Color Count  |         Colors          |
|      (uint32)     |        (int64)        |    (uint16)   |      (N * uint32)       |
+-------------------+-----------------------+---------------+-------------------------+
*/

// Packet is a decoded column packet.
type Packet struct {
	Seq       uint32
	Timestamp time.Time
	Colors    []argb.Color
}

// Publisher is a transport that packs each column into the packet format
// above and sends it through a Sender.
type Publisher struct {
	sender *Sender
	now    func() time.Time

	mu           sync.Mutex
	packetBuffer *bytes.Buffer // Reused for every packet.
	sent         uint64
}

// NewPublisher wraps sender. Closing the publisher closes the sender.
func NewPublisher(sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("udp publisher: sender cannot be nil")
	}
	return &Publisher{
		sender:       sender,
		now:          time.Now,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send packs a transport.Column and transmits it.
func (p *Publisher) Send(data any) error {
	col, ok := data.(transport.Column)
	if !ok {
		return fmt.Errorf("udp publisher cannot send %T", data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := AppendPacket(p.packetBuffer, col, p.now()); err != nil {
		return err
	}
	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	p.sent++
	logger.Debugf("Sent packet %d (%d bytes)", uint32(col.Seq), p.packetBuffer.Len())
	return nil
}

// Sent returns how many packets went out.
func (p *Publisher) Sent() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

var _ transport.Transport = (*Publisher)(nil)

// AppendPacket resets buf and writes col as one packet. The sequence number
// is truncated to 32 bits.
func AppendPacket(buf *bytes.Buffer, col transport.Column, ts time.Time) error {
	if len(col.Colors) > math.MaxUint16 {
		return fmt.Errorf("column of %d colors does not fit in a packet", len(col.Colors))
	}

	buf.Reset()
	buf.Grow(HeaderSize + 4*len(col.Colors))

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[0:], uint32(col.Seq))
	binary.BigEndian.PutUint64(header[4:], uint64(ts.UnixNano()))
	binary.BigEndian.PutUint16(header[12:], uint16(len(col.Colors)))
	buf.Write(header[:])

	var word [4]byte
	for _, c := range col.Colors {
		binary.BigEndian.PutUint32(word[:], uint32(c))
		buf.Write(word[:])
	}
	return nil
}

// DecodePacket parses a packet written by AppendPacket.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("packet of %d bytes is shorter than the header", len(b))
	}
	n := int(binary.BigEndian.Uint16(b[12:]))
	if len(b) != HeaderSize+4*n {
		return Packet{}, fmt.Errorf("packet of %d bytes does not hold %d colors", len(b), n)
	}

	p := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:]),
		Timestamp: time.Unix(0, int64(binary.BigEndian.Uint64(b[4:]))),
		Colors:    make([]argb.Color, n),
	}
	for i := range p.Colors {
		p.Colors[i] = argb.Color(binary.BigEndian.Uint32(b[HeaderSize+4*i:]))
	}
	return p, nil
}
