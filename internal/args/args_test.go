package args

import (
	"slate/internal/object"
	"strings"
	"testing"
)

func TestParseAcceptsMatchingArguments(t *testing.T) {
	r := object.NewRegistry()
	vec, _ := r.Register("vec2", object.ForeignBehavior{})
	handle := &object.ForeignValue{Tag: vec, Payload: new(int)}

	params := MustFormat("vfis", vec)
	vals, errObj := Parse("sample", params, []object.Object{
		handle,
		&object.Integer{Value: 2},
		&object.Integer{Value: 7},
		&object.String{Value: "s"},
	})
	if errObj != nil {
		t.Fatalf("unexpected error: %s", errObj.Message)
	}
	if vals.Handle(0) != handle {
		t.Errorf("Handle(0) is not the passed handle")
	}
	if vals.Float(1) != 2.0 {
		t.Errorf("Float(1) = %v, want 2", vals.Float(1))
	}
	if vals.Int(2) != 7 || vals.String(3) != "s" {
		t.Errorf("Int/String accessors returned %d %q", vals.Int(2), vals.String(3))
	}
}

func TestParseErrors(t *testing.T) {
	r := object.NewRegistry()
	vec, _ := r.Register("vec2", object.ForeignBehavior{})

	tests := []struct {
		name   string
		format string
		args   []object.Object
		pos    int
		want   string
	}{
		{
			name:   "string for number",
			format: "ff",
			args:   []object.Object{&object.Integer{Value: 1}, &object.String{Value: "x"}},
			pos:    2,
			want:   `rnd second argument, "x", is a string but should be a number`,
		},
		{
			name:   "missing argument",
			format: "v",
			args:   nil,
			pos:    1,
			want:   "rnd first argument, #<undefined>, is undefined but should be a vec2",
		},
		{
			name:   "wrong foreign type",
			format: "v",
			args:   []object.Object{&object.Integer{Value: 3}},
			pos:    1,
			want:   "rnd first argument, 3, is an integer but should be a vec2",
		},
		{
			name:   "real for integer",
			format: "i",
			args:   []object.Object{&object.Real{Value: 1.5}},
			pos:    1,
			want:   "rnd first argument, 1.5, is a real but should be an integer",
		},
	}

	for _, tt := range tests {
		_, errObj := Parse("rnd", MustFormat(tt.format, vec), tt.args)
		if errObj == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if errObj.Tag != object.WrongTypeArgTag || errObj.Position != tt.pos {
			t.Errorf("%s: tag %q pos %d, want %q pos %d", tt.name, errObj.Tag, errObj.Position, object.WrongTypeArgTag, tt.pos)
		}
		if errObj.Message != tt.want {
			t.Errorf("%s: message %q, want %q", tt.name, errObj.Message, tt.want)
		}
	}
}

func TestParseReportsFirstMismatch(t *testing.T) {
	_, errObj := Parse("f", MustFormat("fff"), []object.Object{
		&object.Real{Value: 1},
		&object.String{Value: "a"},
		&object.String{Value: "b"},
	})
	if errObj == nil || errObj.Position != 2 {
		t.Fatalf("expected error at position 2, got %+v", errObj)
	}
}

func TestFormatRejectsUnknownToken(t *testing.T) {
	_, err := Format("fq")
	if err == nil {
		t.Fatal("expected error for unknown token")
	}
	if !strings.Contains(err.Error(), `'q'`) {
		t.Errorf("error %q does not name the bad token", err)
	}

	if _, err := Format("v"); err == nil {
		t.Errorf("v without a foreign type was accepted")
	}
}
