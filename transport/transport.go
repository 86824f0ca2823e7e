// Package transport defines the boundary to the byte-framed,
// message-preserving local connection to each neighbor and provides one
// concrete implementation of it. The engine only ever depends on the Conn
// interface.
package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
)

// MaxFrame is the largest message the wire format allows.
const MaxFrame = 65535

// ErrTooLarge is returned by Send when b exceeds MaxFrame.
var ErrTooLarge = errors.New("transport: message exceeds max frame size")

// Conn is a framed, message-preserving connection to one neighbor: each
// Recv returns exactly one message as sent by the peer's Send.
type Conn interface {
	// Recv performs one framed receive of up to MaxFrame bytes. An empty
	// read (io.EOF) or any other error terminates the owning session.
	Recv() ([]byte, error)

	// Send writes b as a single framed message.
	Send(b []byte) error

	// Close releases the underlying resource.
	Close() error
}

// framedConn implements Conn over a byte stream using a 4-byte big-endian
// length prefix per frame, the simplest local framing that preserves
// message boundaries over a raw net.Conn.
type framedConn struct {
	nc net.Conn
}

// NewFramedConn wraps nc with 4-byte length-prefixed framing.
func NewFramedConn(nc net.Conn) Conn {
	return &framedConn{nc: nc}
}

// Dial opens a length-prefix-framed TCP connection to addr:port.
func Dial(addr string) (Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewFramedConn(nc), nil
}

func (c *framedConn) Recv() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(c.nc, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrame {
		return nil, ErrTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.nc, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *framedConn) Send(b []byte) error {
	if len(b) > MaxFrame {
		return ErrTooLarge
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := c.nc.Write(hdr[:]); err != nil {
		return err
	}
	_, err := c.nc.Write(b)
	return err
}

func (c *framedConn) Close() error {
	return c.nc.Close()
}
