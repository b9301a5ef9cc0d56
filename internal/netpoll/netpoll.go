//go:build linux || darwin

// Package netpoll multiplexes a listening TCP socket and a fixed number of
// client connections with zero-timeout polls. A Mux never blocks its
// caller: every Tick polls once, accepts into a free slot, flushes and
// drains ready clients and returns.
package netpoll

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	DefaultCapacity  = 32
	DefaultReadChunk = 1024
	DefaultPrompt    = "> "

	backlog = 64
)

// MaxPending bounds the unread output held for one client.
const MaxPending = 64 << 20

var (
	ErrClosed = errors.New("netpoll: multiplexer closed")

	// ErrPeerGone reports a send to a client that already reset or closed
	// its end. The multiplexer treats it as a disconnect.
	ErrPeerGone = errors.New("netpoll: peer closed connection")
)

type Config struct {
	Port      int
	Capacity  int
	ReadChunk int
	Prompt    string
}

// Handler receives the events of one Tick, in slot order.
type Handler interface {
	Connected(c *Conn)
	Disconnected(c *Conn)
	// Drained is called with everything read from c in one drain cycle.
	// Returning ErrPeerGone closes c; any other error aborts the Tick.
	Drained(c *Conn, buf []byte) error
}

// Conn is one accepted client. Its socket is non-blocking; output the
// kernel cannot take right away waits in pending until the peer reads.
type Conn struct {
	ID     uuid.UUID
	Slot   int
	Remote string

	fd      int
	pending []byte
}

// Send queues b behind any pending output and writes as much as the socket
// accepts now. A reset or broken pipe is reported as ErrPeerGone, as is a
// peer that lets more than MaxPending bytes pile up unread.
func (c *Conn) Send(b []byte) error {
	if len(c.pending) > 0 {
		if len(c.pending)+len(b) > MaxPending {
			return ErrPeerGone
		}
		c.pending = append(c.pending, b...)
		return nil
	}
	rest, err := c.write(b)
	if err != nil {
		return err
	}
	if len(rest) > MaxPending {
		return ErrPeerGone
	}
	c.pending = append(c.pending, rest...)
	return nil
}

func (c *Conn) SendString(s string) error {
	return c.Send([]byte(s))
}

// Pending returns the number of bytes still waiting for the peer to read.
func (c *Conn) Pending() int { return len(c.pending) }

// write returns the part of b the socket would not take without blocking.
func (c *Conn) write(b []byte) ([]byte, error) {
	for len(b) > 0 {
		n, err := unix.Write(c.fd, b)
		if err != nil {
			switch {
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EAGAIN):
				return b, nil
			case errors.Is(err, unix.EPIPE), errors.Is(err, unix.ECONNRESET):
				return nil, ErrPeerGone
			}
			return nil, fmt.Errorf("netpoll: send to %s: %w", c.ID, err)
		}
		b = b[n:]
	}
	return nil, nil
}

// flush writes pending output once poll reports the socket writable.
func (c *Conn) flush() error {
	rest, err := c.write(c.pending)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		c.pending = nil
		return nil
	}
	c.pending = c.pending[len(c.pending)-len(rest):]
	return nil
}

// Mux owns the listening socket and the client slots.
type Mux struct {
	cfg    Config
	lfd    int
	port   int
	slots  []*Conn
	buf    []byte
	closed bool

	fds    []unix.PollFd
	owners []int
}

// Listen opens the listening socket on all interfaces. Port 0 picks an
// ephemeral port, reported by Port.
func Listen(cfg Config) (*Mux, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = DefaultReadChunk
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("netpoll: socket: %w", err)
	}
	unix.CloseOnExec(fd)

	fail := func(op string, err error) (*Mux, error) {
		unix.Close(fd)
		return nil, fmt.Errorf("netpoll: %s: %w", op, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fail("setsockopt", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: cfg.Port}); err != nil {
		return fail(fmt.Sprintf("bind port %d", cfg.Port), err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return fail("listen", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return fail("getsockname", err)
	}

	m := &Mux{
		cfg:   cfg,
		lfd:   fd,
		slots: make([]*Conn, cfg.Capacity),
		buf:   make([]byte, cfg.ReadChunk),
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		m.port = in4.Port
	}
	slog.Info("listening",
		slog.Int("port", m.port),
		slog.Int("capacity", cfg.Capacity))
	return m, nil
}

func (m *Mux) Port() int { return m.port }

// Active returns the number of occupied slots.
func (m *Mux) Active() int {
	n := 0
	for _, c := range m.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// Tick runs one multiplexer pass. The returned error is fatal: every
// recoverable condition is handled inside the pass.
func (m *Mux) Tick(h Handler) error {
	if m.closed {
		return ErrClosed
	}

	m.fds = append(m.fds[:0], unix.PollFd{Fd: int32(m.lfd), Events: unix.POLLIN})
	m.owners = m.owners[:0]
	for i, c := range m.slots {
		if c != nil {
			events := int16(unix.POLLIN)
			if len(c.pending) > 0 {
				events |= unix.POLLOUT
			}
			m.fds = append(m.fds, unix.PollFd{Fd: int32(c.fd), Events: events})
			m.owners = append(m.owners, i)
		}
	}

	n, err := unix.Poll(m.fds, 0)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return fmt.Errorf("netpoll: poll: %w", err)
	}
	if n == 0 {
		return nil
	}

	if m.fds[0].Revents&unix.POLLIN != 0 {
		if err := m.accept(h); err != nil {
			return err
		}
	}

	for j, slot := range m.owners {
		revents := m.fds[j+1].Revents
		if revents == 0 {
			continue
		}
		c := m.slots[slot]
		if c == nil {
			continue
		}
		if revents&unix.POLLOUT != 0 {
			if err := c.flush(); err != nil {
				if errors.Is(err, ErrPeerGone) {
					m.disconnect(c, h)
					continue
				}
				return err
			}
		}
		if revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}
		data, open, err := m.drain(c)
		if err != nil {
			return err
		}
		if !open {
			m.disconnect(c, h)
			continue
		}
		if len(data) == 0 {
			continue
		}
		if err := h.Drained(c, data); err != nil {
			if errors.Is(err, ErrPeerGone) {
				slog.Debug("dropping client",
					slog.String("session", c.ID.String()),
					slog.Int("pending", len(c.pending)))
				m.disconnect(c, h)
				continue
			}
			return err
		}
	}
	return nil
}

// accept takes one pending connection into the first free slot. With
// every slot taken the connection waits in the kernel backlog.
func (m *Mux) accept(h Handler) error {
	slot := -1
	for i, c := range m.slots {
		if c == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil
	}

	nfd, sa, err := unix.Accept(m.lfd)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) || errors.Is(err, unix.ECONNABORTED) {
			return nil
		}
		return fmt.Errorf("netpoll: accept: %w", err)
	}
	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return fmt.Errorf("netpoll: set nonblock: %w", err)
	}

	c := &Conn{ID: uuid.New(), Slot: slot, Remote: remoteAddr(sa), fd: nfd}
	m.slots[slot] = c
	slog.Debug("accepted connection",
		slog.String("session", c.ID.String()),
		slog.Int("slot", slot),
		slog.String("remote", c.Remote))

	h.Connected(c)
	if err := c.SendString(m.cfg.Prompt); err != nil {
		if errors.Is(err, ErrPeerGone) {
			m.disconnect(c, h)
			return nil
		}
		return err
	}
	return nil
}

// drain reads until the socket would block. open is false once a read
// returned end of stream or failed; the bytes of that cycle are dropped
// with the connection.
func (m *Mux) drain(c *Conn) (data []byte, open bool, err error) {
	for {
		n, rerr := unix.Read(c.fd, m.buf)
		if rerr != nil {
			switch {
			case errors.Is(rerr, unix.EINTR):
				continue
			case errors.Is(rerr, unix.EAGAIN):
				return data, true, nil
			}
			slog.Debug("read failed",
				slog.String("session", c.ID.String()),
				slog.Any("error", rerr))
			return nil, false, nil
		}
		if n <= 0 {
			return nil, false, nil
		}
		data = append(data, m.buf[:n]...)
	}
}

func (m *Mux) disconnect(c *Conn, h Handler) {
	m.slots[c.Slot] = nil
	if err := unix.Close(c.fd); err != nil {
		slog.Warn("close failed",
			slog.String("session", c.ID.String()),
			slog.Any("error", err))
	}
	h.Disconnected(c)
}

// Close shuts every client and the listener. A closed Mux fails every
// later Tick with ErrClosed.
func (m *Mux) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	for i, c := range m.slots {
		if c != nil {
			unix.Close(c.fd)
			m.slots[i] = nil
		}
	}
	if err := unix.Close(m.lfd); err != nil {
		return fmt.Errorf("netpoll: close listener: %w", err)
	}
	return nil
}

func remoteAddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port)).String()
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port)).String()
	}
	return "unknown"
}
