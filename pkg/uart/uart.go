// Package uart implements a generic 16550-style serial device. The
// device writes each transmitted byte to a configurable sink and, in
// loopback mode, makes every transmitted byte immediately available
// for reading back.
package uart

import (
	"bufio"
	"container/list"
	"io"
	"log"
	"net"
	"os"

	"github.com/emu86rv/emu86rv/pkg/memio"
)

// Target selects where transmitted bytes go.
type Target int

const (
	// TargetStdout writes every transmitted byte to stdout.
	TargetStdout Target = iota
	// TargetFile writes every transmitted byte to a file.
	TargetFile
	// TargetLoopback feeds every transmitted byte back into the
	// receive FIFO, so the guest can read back whatever it wrote.
	TargetLoopback
	// TargetNet accepts a single TCP control connection and writes
	// transmitted bytes to it, adapted from a serial console
	// transported over net.Conn. Reads are rejected as for every
	// non-loopback target.
	TargetNet
)

// UART16550 is a byte-oriented serial device.
type UART16550 struct {
	target Target
	writer io.Writer
	closer io.Closer
	fifo   *list.List // TargetLoopback read-back queue
}

// NewStdout returns a UART16550 that writes to w (normally os.Stdout).
func NewStdout(w io.Writer) *UART16550 {
	return &UART16550{target: TargetStdout, writer: w}
}

// NewFile returns a UART16550 that writes to the file at path,
// creating or truncating it.
func NewFile(path string) (*UART16550, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	return &UART16550{target: TargetFile, writer: f, closer: f}, nil
}

// NewLoopback returns a UART16550 whose writes are fed back into its
// own read FIFO.
func NewLoopback() *UART16550 {
	return &UART16550{target: TargetLoopback, fifo: list.New()}
}

// NewNet accepts a single controlling TCP connection on 127.0.0.1,
// blocking until one attaches, and returns a UART16550 that writes to
// that connection; nothing is read from it. Grounded on the teacher's
// SerialTTY.TTYAcceptConn.
func NewNet() (*UART16550, error) {
	nl, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	log.Printf("uart: waiting for console to attach on %s/tcp...", nl.Addr())
	conn, err := nl.Accept()
	if err != nil {
		return nil, err
	}
	return &UART16550{target: TargetNet, writer: conn, closer: conn}, nil
}

// Close releases any underlying transport. It is a no-op for targets
// that own no resource.
func (u *UART16550) Close() error {
	if u.closer != nil {
		return u.closer.Close()
	}
	return nil
}

// ReadU8 implements memio.MemoryAccess. Only TargetLoopback answers
// reads; every other target rejects them with memio.ErrNoPermission,
// since a write-only console has no receive path.
func (u *UART16550) ReadU8(addr uint64) (uint8, error) {
	if u.target != TargetLoopback {
		return 0, memio.ErrNoPermission
	}
	if u.fifo.Len() == 0 {
		return 0, nil
	}
	front := u.fifo.Front()
	u.fifo.Remove(front)
	return front.Value.(byte), nil
}

// WriteU8 implements memio.MemoryAccess. Any write is treated as a
// transmitted character. Errors writing to the underlying sink are
// swallowed, matching the interconnect's "best effort" console
// semantics: a detached console must never abort the guest.
func (u *UART16550) WriteU8(addr uint64, b uint8) error {
	switch u.target {
	case TargetLoopback:
		u.fifo.PushBack(b)
		return nil
	default:
		if u.writer != nil {
			if _, err := u.writer.Write([]byte{b}); err != nil {
				log.Printf("uart: write to sink failed: %s", err)
			}
		}
		return nil
	}
}

func openFile(path string) (*bufferedFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &bufferedFile{f: f, w: bufio.NewWriter(f)}, nil
}

// bufferedFile wraps an os.File behind a bufio.Writer, flushing on
// every write so that tests can observe output deterministically.
type bufferedFile struct {
	f *os.File
	w *bufio.Writer
}

func (b *bufferedFile) Write(p []byte) (int, error) {
	n, err := b.w.Write(p)
	if err == nil {
		err = b.w.Flush()
	}
	return n, err
}

func (b *bufferedFile) Close() error {
	_ = b.w.Flush()
	return b.f.Close()
}
