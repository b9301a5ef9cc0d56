//go:build linux || darwin

package netpoll

import (
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

type recorder struct {
	connected    []*Conn
	disconnected []*Conn
	drained      map[int]string
	reply        string
}

func newRecorder(reply string) *recorder {
	return &recorder{drained: make(map[int]string), reply: reply}
}

func (r *recorder) Connected(c *Conn)    { r.connected = append(r.connected, c) }
func (r *recorder) Disconnected(c *Conn) { r.disconnected = append(r.disconnected, c) }

func (r *recorder) Drained(c *Conn, buf []byte) error {
	r.drained[c.Slot] += string(buf)
	if r.reply == "" {
		return nil
	}
	return c.SendString(r.reply)
}

func listen(t *testing.T, capacity int) *Mux {
	t.Helper()
	m, err := Listen(Config{Port: 0, Capacity: capacity})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func dial(t *testing.T, m *Mux) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", m.Port()))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// tickUntil runs Tick until cond holds or a second has passed.
func tickUntil(t *testing.T, m *Mux, h Handler, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if err := m.Tick(h); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func readExactly(t *testing.T, c net.Conn, n int) string {
	t.Helper()
	buf := make([]byte, n)
	c.SetReadDeadline(time.Now().Add(time.Second))
	got := 0
	for got < n {
		k, err := c.Read(buf[got:])
		if err != nil {
			t.Fatalf("read after %q: %v", buf[:got], err)
		}
		got += k
	}
	return string(buf)
}

func TestListenPicksEphemeralPort(t *testing.T) {
	m := listen(t, 1)
	if m.Port() == 0 {
		t.Fatal("Port() = 0 after listening on port 0")
	}
}

func TestAcceptSendsPrompt(t *testing.T) {
	m := listen(t, 2)
	h := newRecorder("")
	c := dial(t, m)

	if !tickUntil(t, m, h, func() bool { return len(h.connected) == 1 }) {
		t.Fatal("connection was never accepted")
	}
	if got := readExactly(t, c, 2); got != "> " {
		t.Errorf("prompt = %q, want %q", got, "> ")
	}
	if h.connected[0].ID.String() == "" || h.connected[0].Slot != 0 {
		t.Errorf("unexpected conn %+v", h.connected[0])
	}
}

func TestDrainDeliversWholeBuffer(t *testing.T) {
	m := listen(t, 1)
	h := newRecorder("ok")
	c := dial(t, m)
	tickUntil(t, m, h, func() bool { return len(h.connected) == 1 })
	readExactly(t, c, 2)

	payload := strings.Repeat("x", 3000)
	if _, err := c.Write([]byte(payload)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !tickUntil(t, m, h, func() bool { return len(h.drained[0]) == len(payload) }) {
		t.Fatalf("drained %d bytes, want %d", len(h.drained[0]), len(payload))
	}
	if got := readExactly(t, c, 2); !strings.HasPrefix(got, "ok") {
		t.Errorf("reply = %q", got)
	}
}

func TestCapacityDefersExtraConnections(t *testing.T) {
	const capacity = 2
	m := listen(t, capacity)
	h := newRecorder("")

	clients := make([]net.Conn, capacity)
	for i := range clients {
		clients[i] = dial(t, m)
	}
	if !tickUntil(t, m, h, func() bool { return len(h.connected) == capacity }) {
		t.Fatalf("accepted %d of %d connections", len(h.connected), capacity)
	}

	extra := dial(t, m)
	for i := 0; i < 20; i++ {
		if err := m.Tick(h); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if len(h.connected) != capacity {
		t.Fatalf("accepted %d connections with %d slots", len(h.connected), capacity)
	}
	extra.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if n, _ := extra.Read(make([]byte, 2)); n != 0 {
		t.Fatal("connection beyond capacity received a prompt")
	}

	clients[0].Close()
	if !tickUntil(t, m, h, func() bool { return len(h.connected) == capacity+1 }) {
		t.Fatal("deferred connection was not accepted after a slot freed")
	}
	if len(h.disconnected) != 1 || h.disconnected[0].Slot != 0 {
		t.Fatalf("disconnected = %+v, want slot 0", h.disconnected)
	}
	if got := h.connected[capacity].Slot; got != 0 {
		t.Errorf("deferred connection took slot %d, want the freed slot 0", got)
	}
	if got := readExactly(t, extra, 2); got != "> " {
		t.Errorf("deferred prompt = %q", got)
	}
}

func TestDisconnectLeavesOthersOpen(t *testing.T) {
	m := listen(t, 2)
	h := newRecorder("pong")
	a, b := dial(t, m), dial(t, m)
	tickUntil(t, m, h, func() bool { return len(h.connected) == 2 })
	readExactly(t, a, 2)
	readExactly(t, b, 2)

	a.Close()
	if !tickUntil(t, m, h, func() bool { return len(h.disconnected) == 1 }) {
		t.Fatal("disconnect not noticed")
	}
	if m.Active() != 1 {
		t.Errorf("Active() = %d, want 1", m.Active())
	}

	b.Write([]byte("ping"))
	if !tickUntil(t, m, h, func() bool { return h.drained[1] == "ping" }) {
		t.Fatalf("second client drained %q", h.drained[1])
	}
	if got := readExactly(t, b, 4); got != "pong" {
		t.Errorf("reply = %q", got)
	}
}

func TestTickAfterClose(t *testing.T) {
	m := listen(t, 1)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Tick(newRecorder("")); err != ErrClosed {
		t.Errorf("Tick after Close = %v, want ErrClosed", err)
	}
}

func TestSlowReaderDoesNotBlockTick(t *testing.T) {
	m := listen(t, 2)
	big := strings.Repeat("y", 32<<20)
	h := newRecorder(big)
	slow := dial(t, m)
	tickUntil(t, m, h, func() bool { return len(h.connected) == 1 })
	readExactly(t, slow, 2)

	if _, err := slow.Write([]byte("go")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		for i := 0; i < 20; i++ {
			if err := m.Tick(h); err != nil {
				done <- err
				return
			}
			time.Sleep(time.Millisecond)
		}
		done <- nil
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Tick: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Tick blocked on a client that does not read")
	}
	if h.drained[0] != "go" {
		t.Fatalf("slow client drained %q", h.drained[0])
	}
	if h.connected[0].Pending() == 0 {
		t.Fatal("a 32 MiB reply fit in the socket buffers; nothing was left pending")
	}

	h.reply = "pong"
	fast := dial(t, m)
	if !tickUntil(t, m, h, func() bool { return len(h.connected) == 2 }) {
		t.Fatal("second client was not accepted while the first had output pending")
	}
	readExactly(t, fast, 2)
	fast.Write([]byte("ping"))
	if !tickUntil(t, m, h, func() bool { return h.drained[1] == "ping" }) {
		t.Fatalf("second client drained %q", h.drained[1])
	}
	if got := readExactly(t, fast, 4); got != "pong" {
		t.Errorf("reply = %q", got)
	}

	// The pending reply arrives intact once the slow client reads.
	read := make(chan string, 1)
	go func() {
		buf := make([]byte, len(big))
		slow.SetReadDeadline(time.Now().Add(10 * time.Second))
		n, _ := io.ReadFull(slow, buf)
		read <- string(buf[:n])
	}()
	var got string
	deadline := time.Now().Add(10 * time.Second)
	for got == "" && time.Now().Before(deadline) {
		if err := m.Tick(h); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		select {
		case got = <-read:
		case <-time.After(time.Millisecond):
		}
	}
	if got != big {
		t.Fatalf("slow client read %d bytes, want %d", len(got), len(big))
	}
	if p := h.connected[0].Pending(); p != 0 {
		t.Errorf("Pending() = %d after the client read everything", p)
	}
}
