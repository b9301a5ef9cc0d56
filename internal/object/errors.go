package object

import (
	"fmt"
	"strings"
)

const (
	WrongTypeArgTag    = "wrong-type-arg"
	WrongArgsNumberTag = "wrong-number-of-args"
	UnboundVariableTag = "unbound-variable"
	SyntaxErrorTag     = "syntax-error"
	ReadErrorTag       = "read-error"
	OutOfRangeTag      = "out-of-range"
	DivisionByZeroTag  = "division-by-zero"
	IOErrorTag         = "io-error"
	UserErrorTag       = "error"
)

func NewError(tag string, format string, a ...interface{}) *Error {
	return &Error{Tag: tag, Message: fmt.Sprintf(format, a...)}
}

var ordinals = [...]string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth", "ninth", "tenth"}

func ordinal(n int) string {
	if n >= 1 && n <= len(ordinals) {
		return ordinals[n-1]
	}
	return fmt.Sprintf("%dth", n)
}

// WrongTypeArg builds the error raised when argument pos (1-based) of
// caller is not of the expected type.
func WrongTypeArg(caller string, pos int, arg Object, expected string) *Error {
	return &Error{
		Tag: WrongTypeArgTag,
		Message: fmt.Sprintf("%s %s argument, %s, is %s but should be %s",
			caller, ordinal(pos), arg.Inspect(), Describe(arg), withArticle(expected)),
		Caller:   caller,
		Position: pos,
		Irritant: arg,
		Expected: expected,
	}
}

// Describe names the type of obj for error messages.
func Describe(obj Object) string {
	switch o := obj.(type) {
	case *Nil:
		return "nil"
	case *Unspecified:
		return "unspecified"
	case *Undefined:
		return "undefined"
	case *Eof:
		return "#<eof>"
	case *Boolean:
		return "a boolean"
	case *Integer:
		return "an integer"
	case *Real:
		return "a real"
	case *String:
		return "a string"
	case *Symbol:
		return "a symbol"
	case *Pair:
		return "a pair"
	case *Procedure, *Foreign:
		return "a procedure"
	case *ForeignValue:
		if o.Tag != nil {
			return withArticle(o.Tag.Name)
		}
		return "a foreign value"
	case *Port:
		return "an output port"
	case *Error:
		return "an error"
	}
	return "an object"
}

func withArticle(noun string) string {
	if noun == "" {
		return noun
	}
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}
