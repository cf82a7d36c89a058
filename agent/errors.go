package agent

import (
	"context"
	"errors"
	"fmt"
)

// Tool-level error conditions. These only ever appear inside failed results;
// the dispatch boundary never returns them as Go errors.
var (
	// ErrUnknownTool marks a call naming no registered tool.
	ErrUnknownTool = errors.New("unknown function")
	// ErrProviderUnavailable marks an external call whose provider is not
	// connected.
	ErrProviderUnavailable = errors.New("tool provider unavailable")
)

// ModelError marks a failure of the language-model call itself. Unlike tool
// failures it is not recoverable within the loop: the run aborts and the
// error surfaces to the caller.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsModelError reports whether err is (or wraps) a ModelError.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
