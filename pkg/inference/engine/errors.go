package engine

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrModelUnavailable is matched by every error coming out of a provider call.
var ErrModelUnavailable = errors.New("model unavailable")

type unavailableError struct {
	provider string
	cause    error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrModelUnavailable.Error(), e.provider, e.cause)
}

func (e *unavailableError) Unwrap() error { return e.cause }

func (e *unavailableError) Is(target error) bool { return target == ErrModelUnavailable }

// Unavailable marks err as a provider failure while keeping it in the chain.
func Unavailable(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &unavailableError{provider: provider, cause: err}
}

// AsUnavailable marks err as a model failure unless it already is one or the
// caller's context ended.
func AsUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrModelUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return Unavailable("engine", err)
}
