// Package capture evaluates source with the interpreter's output and
// error ports redirected to fresh string ports.
package capture

import (
	"slate/internal/object"
)

// Evaluator is the interpreter surface capture needs.
type Evaluator interface {
	EvalString(src string) object.Object
	SetCurrentOutputPort(p *object.Port) *object.Port
	SetCurrentErrorPort(p *object.Port) *object.Port
}

// Transcript is everything one evaluation produced.
type Transcript struct {
	Out    string
	Err    string
	Result object.Object
}

// Failed reports whether the evaluation raised an error.
func (t Transcript) Failed() bool {
	return object.IsError(t.Result)
}

// Eval runs src against ev with both ports captured. The previous ports are
// restored on every return path, including a panic in a native binding.
func Eval(ev Evaluator, src string) (t Transcript) {
	out := object.NewStringPort()
	errPort := object.NewStringPort()
	prevOut := ev.SetCurrentOutputPort(out)
	prevErr := ev.SetCurrentErrorPort(errPort)
	defer func() {
		ev.SetCurrentOutputPort(prevOut)
		ev.SetCurrentErrorPort(prevErr)
		out.Close()
		errPort.Close()
	}()

	t.Result = ev.EvalString(src)
	t.Out = out.String()
	t.Err = errPort.String()
	return t
}
