package foreign

import (
	"bytes"
	"math"
	"slate/internal/args"
	"runtime"
	"slate/internal/evaluator"
	"slate/internal/object"
	"strings"
	"testing"
	"time"
)

func newTestHost(t *testing.T) (*evaluator.Interpreter, *Bindings) {
	t.Helper()
	var out, errOut bytes.Buffer
	in := evaluator.New(&out, &errOut)
	b, err := Install(in, 4)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	return in, b
}

func TestVec2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"print", "(make-vec2 1 2)", "<vec2 1.0000 2.0000>"},
		{"predicate", "(vec2? (make-vec2 0 0))", "#t"},
		{"predicate on number", "(vec2? 1)", "#f"},
		{"x accessor", "(vec2-x (make-vec2 1.5 2))", "1.5"},
		{"y accessor", "(vec2-y (make-vec2 1.5 2))", "2.0"},
		{"setter returns value", "(set-vec2-x! (make-vec2 0 0) 3)", "3"},
		{"generalized set", "(define v (make-vec2 0 0)) (set! (vec2-y v) 4) v", "<vec2 0.0000 4.0000>"},
		{"add", "(+ (make-vec2 1 2) (make-vec2 3 4))", "<vec2 4.0000 6.0000>"},
		{"sub", "(- (make-vec2 1 2) (make-vec2 3 4))", "<vec2 -2.0000 -2.0000>"},
		{"scale", "(* (make-vec2 1 2) 2)", "<vec2 2.0000 4.0000>"},
		{"divide", "(/ (make-vec2 1 2) 2)", "<vec2 0.5000 1.0000>"},
		{"divide by zero", "(/ (make-vec2 1 2) 0)", "<vec2 inf inf>"},
		{"negative infinity", "(/ (make-vec2 -1 2) 0)", "<vec2 -inf inf>"},
		{"numbers still add", "(+ 1 2 3)", "6"},
		{"numbers still divide", "(/ 6 3)", "2"},
		{"length", "(vec2-length (make-vec2 3 4))", "5.0"},
		{"dot", "(vec2-dot (make-vec2 1 2) (make-vec2 3 4))", "11.0"},
		{"normalize", "(vec2-normalize (make-vec2 0 2))", "<vec2 0.0000 1.0000>"},
		{"perp", "(vec2-perp (make-vec2 0 1))", "<vec2 -1.0000 0.0000>"},
		{"lerp", "(vec2-lerp (make-vec2 0 0) (make-vec2 2 4) 0.5)", "<vec2 1.0000 2.0000>"},
		{"same handle is eq", "(define v (make-vec2 1 1)) (eq? v v)", "#t"},
		{"distinct handles differ", "(eqv? (make-vec2 1 1) (make-vec2 1 1))", "#f"},
	}

	for _, tt := range tests {
		in, _ := newTestHost(t)
		got := in.EvalString(tt.input)
		if object.IsError(got) {
			t.Errorf("%s: unexpected error %q", tt.name, got.Inspect())
			continue
		}
		if got.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got.Inspect(), tt.want)
		}
	}
}

func TestFormatField(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"finite", 1.23456, "1.2346"},
		{"positive infinity", math.Inf(1), "inf"},
		{"negative infinity", math.Inf(-1), "-inf"},
		{"not a number", math.NaN(), "nan"},
	}

	for _, tt := range tests {
		if got := formatField(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestVec2ParamsBindRegisteredType(t *testing.T) {
	_, b := newTestHost(t)
	params := b.params("vfv")
	if len(params) != 3 {
		t.Fatalf("got %d params, want 3", len(params))
	}
	for _, i := range []int{0, 2} {
		if params[i].Kind != args.ForeignKind || params[i].Type != b.Vec2Type {
			t.Errorf("param %d = %+v, want the vec2 type", i, params[i])
		}
	}
	if params[1].Kind != args.Float {
		t.Errorf("param 1 kind = %v, want Float", params[1].Kind)
	}
}

func TestVec2Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accessor on number", "(vec2-x 1)", "vec2-x first argument, 1, is an integer but should be a vec2"},
		{"constructor on string", `(make-vec2 "a" 1)`, `make-vec2 first argument, "a", is a string but should be a number`},
		{"missing argument", "(make-vec2 1)", "make-vec2 second argument"},
		{"vec2 plus number falls back", "(+ (make-vec2 1 2) 1)", "+"},
		{"number times vec2 falls back", "(* 2 (make-vec2 1 2))", "*"},
	}

	for _, tt := range tests {
		in, _ := newTestHost(t)
		got := in.EvalString(tt.input)
		errObj, ok := got.(*object.Error)
		if !ok {
			t.Errorf("%s: expected an error, got %q", tt.name, got.Inspect())
			continue
		}
		if !strings.HasPrefix(errObj.Message, tt.want) {
			t.Errorf("%s: message %q does not start with %q", tt.name, errObj.Message, tt.want)
		}
	}
}

func TestMathBindings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clamp01", "(clamp01 1.5)", "1.0"},
		{"clamp", "(clamp 5 0 2)", "2.0"},
		{"lerp", "(lerp 0 10 0.25)", "2.5"},
		{"ease cubic in", "(ease-cubic-in 0.5)", "0.125"},
		{"normalize-deg", "(normalize-deg -90)", "270.0"},
		{"fuzzy equal", "(fuzzy-equal? 1 1.00000000001)", "#t"},
		{"rnd in range", "(let ((r (rnd 2 3))) (and (>= r 2) (<= r 3)))", "#t"},
		{"rnd reversed bounds in range", "(let ((r (rnd 3 2))) (and (>= r 2) (<= r 3)))", "#t"},
		{"rnd01 in range", "(let ((r (rnd01))) (and (>= r 0) (<= r 1)))", "#t"},
	}

	for _, tt := range tests {
		in, _ := newTestHost(t)
		got := in.EvalString(tt.input)
		if got.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got.Inspect(), tt.want)
		}
	}
}

func TestRndSwapsReversedBounds(t *testing.T) {
	forward, _ := newTestHost(t)
	reversed, _ := newTestHost(t)
	for i := 0; i < 5; i++ {
		a := forward.EvalString("(rnd 0 10)").Inspect()
		b := reversed.EvalString("(rnd 10 0)").Inspect()
		if a != b {
			t.Fatalf("draw %d: (rnd 10 0) = %s, want %s", i, b, a)
		}
	}
}

func TestInstallTwiceFails(t *testing.T) {
	in, _ := newTestHost(t)
	if _, err := Install(in, 4); err == nil {
		t.Fatal("second Install succeeded, want duplicate type error")
	}
}

//go:noinline
func makeGarbage(in *evaluator.Interpreter, n int) {
	for i := 0; i < n; i++ {
		in.EvalString("(make-vec2 1 2)")
	}
}

func TestVec2RecordsReturnToPool(t *testing.T) {
	in, b := newTestHost(t)
	makeGarbage(in, 32)
	if got := b.Pool.Stats().InUse; got == 0 {
		t.Fatal("no records in use after allocating")
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.Pool.Stats().InUse > 0 {
		if time.Now().After(deadline) {
			t.Skipf("collector left %d records live", b.Pool.Stats().InUse)
		}
		runtime.GC()
		in.Reclaim()
	}

	before := b.Pool.Stats().Capacity
	makeGarbage(in, 8)
	if after := b.Pool.Stats().Capacity; after != before {
		t.Errorf("pool grew from %d to %d instead of reusing freed records", before, after)
	}
}

func TestDatabase(t *testing.T) {
	in, _ := newTestHost(t)
	setup := `
(define db (db-open "sqlite3" ":memory:"))
(db-exec db "create table t (id integer primary key, name text, score real)")
(db-exec db "insert into t (name, score) values (?, ?)" "ann" 1.5)
`
	if got := in.EvalString(setup); object.IsError(got) {
		t.Fatalf("setup: %s", got.Inspect())
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"print", "db", "#<db sqlite3>"},
		{"exec result", `(db-exec db "insert into t (name, score) values (?, ?)" "bob" '())`, "(1 . 2)"},
		{"query rows", `(db-query db "select id, name, score from t where id = 1")`, `(((id . 1) (name . "ann") (score . 1.5)))`},
		{"null is empty list", `(cdr (assq 'score (car (db-query db "select score from t where id = 2"))))`, "()"},
		{"no rows", `(db-query db "select id from t where id = 99")`, "()"},
		{"rollback discards", `(db-begin db) (db-exec db "delete from t") (db-rollback db) (length (db-query db "select id from t"))`, "2"},
		{"commit keeps", `(db-begin db) (db-exec db "delete from t where id = 2") (db-commit db) (length (db-query db "select id from t"))`, "1"},
	}

	for _, tt := range tests {
		got := in.EvalString(tt.input)
		if object.IsError(got) {
			t.Errorf("%s: unexpected error %q", tt.name, got.Inspect())
			continue
		}
		if got.Inspect() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got.Inspect(), tt.want)
		}
	}
}

func TestDatabaseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown driver", `(db-open "nope" "")`, "db-open: failed to open connection"},
		{"bad sql", `(db-exec (db-open "sqlite3" ":memory:") "not sql")`, "db-exec: exec failed"},
		{"commit without begin", `(db-commit (db-open "sqlite3" ":memory:"))`, "db-commit: no open transaction"},
		{"use after close", `(define db (db-open "sqlite3" ":memory:")) (db-close db) (db-query db "select 1")`, "db-query: database is closed"},
		{"not a handle", `(db-query 1 "select 1")`, "db-query first argument, 1, is an integer but should be a db"},
	}

	for _, tt := range tests {
		in, _ := newTestHost(t)
		got := in.EvalString(tt.input)
		errObj, ok := got.(*object.Error)
		if !ok {
			t.Errorf("%s: expected an error, got %q", tt.name, got.Inspect())
			continue
		}
		if !strings.HasPrefix(errObj.Message, tt.want) {
			t.Errorf("%s: message %q does not start with %q", tt.name, errObj.Message, tt.want)
		}
		if tt.name != "not a handle" && errObj.Tag != object.IOErrorTag {
			t.Errorf("%s: tag %q, want %q", tt.name, errObj.Tag, object.IOErrorTag)
		}
	}
}
