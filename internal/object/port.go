package object

import (
	"errors"
	"io"
	"strings"
)

var ErrPortClosed = errors.New("port closed")

// Port is an output port. A string port accumulates into memory; a
// writer port forwards to an io.Writer.
type Port struct {
	Name   string
	w      io.Writer
	buf    *strings.Builder
	closed bool
}

func NewStringPort() *Port {
	buf := &strings.Builder{}
	return &Port{Name: "string", w: buf, buf: buf}
}

func NewWriterPort(name string, w io.Writer) *Port {
	return &Port{Name: name, w: w}
}

func (p *Port) Type() ObjectType { return PORT_OBJ }
func (p *Port) Inspect() string  { return "#<output-port " + p.Name + ">" }

func (p *Port) WriteString(s string) error {
	if p.closed {
		return ErrPortClosed
	}
	_, err := io.WriteString(p.w, s)
	return err
}

// String returns what a string port has accumulated so far. Writer ports
// return "".
func (p *Port) String() string {
	if p.buf == nil {
		return ""
	}
	return p.buf.String()
}

func (p *Port) Close() {
	p.closed = true
}
