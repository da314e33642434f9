package bruteforce

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrInvalidTarget = errors.New("invalid target character")
	ErrInvalidParams = errors.New("invalid search parameters")
	ErrMismatch      = errors.New("match does not reproduce")
)

// InputError reports a target that has no usable code point.
type InputError struct {
	Target string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidTarget, e.Target, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidTarget
}

// CharCode returns the code point of target. The target must hold exactly one
// valid UTF-8 encoded character; anything else is an *InputError.
func CharCode(target string) (rune, error) {
	if target == "" {
		return 0, &InputError{Target: target, Reason: "empty"}
	}
	if n := utf8.RuneCountInString(target); n != 1 {
		return 0, &InputError{Target: target, Reason: fmt.Sprintf("%d characters, want 1", n)}
	}
	r, size := utf8.DecodeRuneInString(target)
	if r == utf8.RuneError && size <= 1 {
		return 0, &InputError{Target: target, Reason: "not valid UTF-8"}
	}
	return r, nil
}
