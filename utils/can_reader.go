package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"cancalib/calibration"
)

// CANReader is the transport boundary: something that yields bus frames.
type CANReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

type received struct {
	frame can.Frame
	err   error
}

// SocketCANReader reads frames from a SocketCAN interface through einride's
// receiver. A single goroutine drains the socket so ReadFrame can honour
// context cancellation.
type SocketCANReader struct {
	conn      net.Conn
	recv      *socketcan.Receiver
	frames    chan received
	done      chan struct{}
	closeOnce sync.Once
}

func NewSocketCANReader(ctx context.Context, ifname string) (*SocketCANReader, error) {
	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", ifname, err)
	}

	r := &SocketCANReader{
		conn:   conn,
		recv:   socketcan.NewReceiver(conn),
		frames: make(chan received, 64),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r, nil
}

func (r *SocketCANReader) loop() {
	defer close(r.frames)
	for r.recv.Receive() {
		if r.recv.HasErrorFrame() {
			continue
		}
		if !r.deliver(received{frame: r.recv.Frame()}) {
			return
		}
	}
	err := r.recv.Err()
	if err == nil {
		err = net.ErrClosed
	}
	r.deliver(received{err: err})
}

func (r *SocketCANReader) deliver(rx received) bool {
	select {
	case r.frames <- rx:
		return true
	case <-r.done:
		return false
	}
}

// ReadFrame blocks until a frame arrives, the socket fails, or ctx ends.
func (r *SocketCANReader) ReadFrame(ctx context.Context) (can.Frame, error) {
	select {
	case <-ctx.Done():
		return can.Frame{}, ctx.Err()
	case rx, ok := <-r.frames:
		if !ok {
			return can.Frame{}, net.ErrClosed
		}
		return rx.frame, rx.err
	}
}

func (r *SocketCANReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		if r.conn != nil {
			err = r.conn.Close()
		}
	})
	return err
}

// FromCANFrame converts an einride frame into the calibration input.
// Remote frames carry no payload.
func FromCANFrame(iface string, timestamp float64, f can.Frame) calibration.RawFrame {
	n := min(int(f.Length), len(f.Data))
	if f.IsRemote {
		n = 0
	}
	data := make([]byte, n)
	copy(data, f.Data[:n])
	return calibration.RawFrame{
		Interface: iface,
		Timestamp: timestamp,
		ID:        f.ID,
		Data:      data,
	}
}

// FrameSource stamps frames from a CANReader with the interface name and
// the time in seconds since the first frame was received.
type FrameSource struct {
	iface  string
	reader CANReader
	log    *Logger
	now    func() time.Time
	base   time.Time
}

func NewFrameSource(iface string, reader CANReader, log *Logger) *FrameSource {
	return &FrameSource{iface: iface, reader: reader, log: log, now: time.Now}
}

// Next returns the next frame. Errors from the reader are returned as is,
// so callers can test for context cancellation.
func (s *FrameSource) Next(ctx context.Context) (calibration.RawFrame, error) {
	f, err := s.reader.ReadFrame(ctx)
	if err != nil {
		return calibration.RawFrame{}, err
	}
	now := s.now()
	if s.base.IsZero() {
		s.base = now
	}
	ts := now.Sub(s.base).Seconds()
	if s.log != nil {
		s.log.Trace("RX %s t=%.6f id=0x%X len=%d data=% X", s.iface, ts, f.ID, f.Length, f.Data[:min(int(f.Length), len(f.Data))])
	}
	return FromCANFrame(s.iface, ts, f), nil
}

func (s *FrameSource) Close() error {
	err := s.reader.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
