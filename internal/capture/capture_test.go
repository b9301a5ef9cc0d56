package capture

import (
	"bytes"
	"slate/internal/evaluator"
	"slate/internal/object"
	"testing"
)

func TestEvalCapturesPorts(t *testing.T) {
	const carErr = "car first argument, 1, is an integer but should be a pair"
	tests := []struct {
		name   string
		input  string
		out    string
		err    string
		result string
		failed bool
	}{
		{"value only", "(+ 1 2)", "", "", "3", false},
		{"display", `(display "hi")`, "hi", "", "#<unspecified>", false},
		{"error", "(car 1)", "", ";" + carErr, carErr, true},
		{"output then error", `(display "a") (car 1)`, "a", ";" + carErr, carErr, true},
		{"error port", `(display "warn" (current-error-port)) 5`, "", "warn", "5", false},
	}

	for _, tt := range tests {
		var stdout, stderr bytes.Buffer
		in := evaluator.New(&stdout, &stderr)

		tr := Eval(in, tt.input)
		if tr.Out != tt.out || tr.Err != tt.err {
			t.Errorf("%s: out %q err %q, want %q %q", tt.name, tr.Out, tr.Err, tt.out, tt.err)
		}
		if tr.Failed() != tt.failed {
			t.Errorf("%s: Failed() = %v", tt.name, tr.Failed())
		}
		if tr.Result.Inspect() != tt.result {
			t.Errorf("%s: result %q, want %q", tt.name, tr.Result.Inspect(), tt.result)
		}
		if stdout.Len() != 0 || stderr.Len() != 0 {
			t.Errorf("%s: output leaked to the real ports: %q %q", tt.name, stdout.String(), stderr.String())
		}
	}
}

func TestEvalRestoresPortsAfterPanic(t *testing.T) {
	var stdout bytes.Buffer
	in := evaluator.New(&stdout, &stdout)
	in.Define("explode", &object.Foreign{
		Name: "explode",
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
			panic("native failure")
		},
	})
	prevOut := in.CurrentOutputPort()
	prevErr := in.CurrentErrorPort()

	func() {
		defer func() { _ = recover() }()
		Eval(in, "(explode)")
	}()

	if in.CurrentOutputPort() != prevOut || in.CurrentErrorPort() != prevErr {
		t.Fatalf("ports were not restored after a panic")
	}
	in.EvalString(`(display "after")`)
	if stdout.String() != "after" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "after")
	}
}
