// Package console serves an interactive scripting console over TCP. One
// goroutine owns the interpreter, the vec2 pool and every socket; Run
// drives them one tick at a time.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slate/internal/evaluator"
	"slate/internal/foreign"
	"slate/internal/netpoll"
	"slate/internal/util"
	"time"
)

type Console struct {
	cfg      util.Configuration
	interp   *evaluator.Interpreter
	bindings *foreign.Bindings
	mux      *netpoll.Mux

	frames       uint64
	entryMissing bool
}

// New builds the interpreter, installs the native bindings, loads the
// support and main scripts and starts listening. Any failure is fatal to
// the console and nothing is left open.
func New(cfg util.Configuration, stdout, stderr io.Writer) (*Console, error) {
	in := evaluator.New(stdout, stderr)
	b, err := foreign.Install(in, cfg.PoolGrow)
	if err != nil {
		return nil, err
	}
	for _, path := range []string{cfg.SupportScript, cfg.MainScript} {
		if err := in.LoadFile(path); err != nil {
			return nil, err
		}
	}

	mux, err := netpoll.Listen(netpoll.Config{
		Port:      cfg.Port,
		Capacity:  cfg.Capacity,
		ReadChunk: cfg.ReadChunk,
		Prompt:    cfg.Prompt,
	})
	if err != nil {
		return nil, err
	}

	return &Console{cfg: cfg, interp: in, bindings: b, mux: mux}, nil
}

func (c *Console) Interpreter() *evaluator.Interpreter { return c.interp }

func (c *Console) Port() int { return c.mux.Port() }

// Tick releases collected handles, services the network once and calls
// the frame entry. Only multiplexer failures are returned.
func (c *Console) Tick() error {
	c.interp.Reclaim()
	if err := c.mux.Tick(c); err != nil {
		return fmt.Errorf("tick %d: %w", c.frames, err)
	}
	c.frame()
	c.frames++
	return nil
}

func (c *Console) frame() {
	_, err := c.interp.Call(c.cfg.FrameEntry)
	switch {
	case err == nil:
		c.entryMissing = false
	case errors.Is(err, evaluator.ErrUndefined):
		if !c.entryMissing {
			slog.Warn("frame entry not defined", slog.String("name", c.cfg.FrameEntry))
			c.entryMissing = true
		}
	default:
		slog.Warn("frame entry failed",
			slog.String("name", c.cfg.FrameEntry),
			slog.Any("error", err))
	}
}

// Run ticks until ctx is cancelled, one tick per frame interval. A zero
// interval ticks as fast as possible.
func (c *Console) Run(ctx context.Context) error {
	var pace <-chan time.Time
	if c.cfg.FrameInterval > 0 {
		ticker := time.NewTicker(c.cfg.FrameInterval)
		defer ticker.Stop()
		pace = ticker.C
	}

	slog.Info("console running",
		slog.Int("port", c.Port()),
		slog.Duration("frame_interval", c.cfg.FrameInterval))
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := c.Tick(); err != nil {
			return err
		}
		if pace == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-pace:
		}
	}
}

// Close shuts the listener and every client connection.
func (c *Console) Close() error {
	stats := c.bindings.Pool.Stats()
	slog.Info("console closing",
		slog.Uint64("frames", c.frames),
		slog.Int("vec2_in_use", stats.InUse),
		slog.Int("vec2_capacity", stats.Capacity))
	return c.mux.Close()
}
