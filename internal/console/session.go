package console

import (
	"log/slog"
	"slate/internal/capture"
	"slate/internal/netpoll"
)

// Respond builds the reply to one drained buffer. A lone newline only
// re-prompts. Anything else is evaluated once, as a whole, and answered
// with the captured error text, or else the captured output, or else the
// printed result, followed by a newline and the prompt.
func Respond(ev capture.Evaluator, input, prompt string) string {
	if input == "\n" {
		return prompt
	}

	t := capture.Eval(ev, input)
	var body string
	switch {
	case t.Err != "":
		body = t.Err
	case t.Out != "":
		body = t.Out
	default:
		body = t.Result.Inspect()
	}
	return body + "\n" + prompt
}

func (c *Console) Connected(conn *netpoll.Conn) {
	slog.Info("client connected.",
		slog.Int("slot", conn.Slot),
		slog.String("session", conn.ID.String()),
		slog.String("remote", conn.Remote))
}

func (c *Console) Disconnected(conn *netpoll.Conn) {
	slog.Info("client disconnected.",
		slog.Int("slot", conn.Slot),
		slog.String("session", conn.ID.String()))
}

func (c *Console) Drained(conn *netpoll.Conn, buf []byte) error {
	input := string(buf)
	reply := Respond(c.interp, input, c.cfg.Prompt)
	slog.Debug("evaluated request",
		slog.String("session", conn.ID.String()),
		slog.Int("bytes", len(buf)),
		slog.Int("reply", len(reply)))
	return conn.SendString(reply)
}
