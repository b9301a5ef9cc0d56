package foreign

import (
	"fmt"
	"slate/internal/mathx"
	"slate/internal/object"
	"slate/internal/pool"
)

// Host is the interpreter surface the bindings are installed into.
type Host interface {
	Registry() *object.Registry
	Lookup(name string) (object.Object, bool)
	Define(name string, obj object.Object)
}

// Bindings is the native state behind the foreign procedures of one
// interpreter: the registered type tags, the vec2 record pool and the
// random generator.
type Bindings struct {
	Vec2Type *object.ForeignType
	DBType   *object.ForeignType
	Pool     *pool.Pool[mathx.Vec2]

	rand *mathx.Rand
}

// Install registers the foreign types, binds every foreign procedure and
// extends the arithmetic operators with vec2 cases. grow is the number of
// vec2 records the pool adds at a time.
func Install(h Host, grow int) (*Bindings, error) {
	b := &Bindings{
		Pool: pool.New[mathx.Vec2](grow),
		rand: mathx.NewRand(),
	}

	var err error
	if b.Vec2Type, err = h.Registry().Register("vec2", b.vec2Behavior()); err != nil {
		return nil, fmt.Errorf("install vec2: %w", err)
	}
	if b.DBType, err = h.Registry().Register("db", dbBehavior()); err != nil {
		return nil, fmt.Errorf("install db: %w", err)
	}

	for name, fn := range b.GetForeignFunctions() {
		h.Define(name, fn)
	}
	if err := b.installOperators(h); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bindings) GetForeignFunctions() map[string]*object.Foreign {
	setX := b.fnSetVec2X()
	setY := b.fnSetVec2Y()

	return map[string]*object.Foreign{
		"make-vec2":      b.fnMakeVec2(),
		"vec2?":          b.fnVec2P(),
		"vec2-x":         b.fnVec2X(setX),
		"vec2-y":         b.fnVec2Y(setY),
		"set-vec2-x!":    setX,
		"set-vec2-y!":    setY,
		"vec2-length":    b.fnVec2Scalar("vec2-length", mathx.Vec2.Length),
		"vec2-dot":       b.fnVec2Pair("vec2-dot", mathx.Vec2.Dot),
		"vec2-cross":     b.fnVec2Pair("vec2-cross", mathx.Vec2.Cross),
		"vec2-distance":  b.fnVec2Pair("vec2-distance", mathx.Vec2.Distance),
		"vec2-normalize": b.fnVec2Map("vec2-normalize", mathx.Vec2.Normalized),
		"vec2-perp":      b.fnVec2Map("vec2-perp", mathx.Vec2.Perp),
		"vec2-lerp":      b.fnVec2Lerp(),
		"vec2-rotate":    b.fnVec2Rotate(),

		"ease-linear":       fnUnary("ease-linear", mathx.EaseLinear),
		"ease-cubic-in":     fnUnary("ease-cubic-in", mathx.EaseCubicIn),
		"ease-cubic-out":    fnUnary("ease-cubic-out", mathx.EaseCubicOut),
		"ease-cubic-in-out": fnUnary("ease-cubic-in-out", mathx.EaseCubicInOut),
		"normalize-deg":     fnUnary("normalize-deg", mathx.NormalizeDeg),
		"normalize-rad":     fnUnary("normalize-rad", mathx.NormalizeRad),
		"clamp01":           fnUnary("clamp01", mathx.Clamp01),
		"lerp":              fnTernary("lerp", mathx.Lerp),
		"clamp":             fnTernary("clamp", mathx.Clamp),
		"angles-lerp":       fnTernary("angles-lerp", mathx.AnglesLerp),
		"hermite":           fnHermite(),
		"fuzzy-equal?":      fnFuzzyEqual(),
		"rnd01":             b.fnRnd01(),
		"rnd":               b.fnRnd(),

		"db-open":     fnDbOpen(),
		"db-exec":     fnDbExec(),
		"db-query":    fnDbQuery(),
		"db-begin":    fnDbBegin(),
		"db-commit":   fnDbCommit(),
		"db-rollback": fnDbRollback(),
		"db-close":    fnDbClose(),
	}
}
