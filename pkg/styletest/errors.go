package styletest

import (
	"errors"
	"fmt"

	"github.com/recera/vango-styled/pkg/styletest/cssast"
)

// ErrMissingHook is wrapped by every error describing a style engine hook
// the adapter could not bind to.
var ErrMissingHook = errors.New("missing style engine hook")

// ParseError is returned by ToHaveStyleRule when the injected CSS cannot be
// parsed. It signals a broken pipeline rather than a failed assertion.
type ParseError = cssast.ParseError

// ConfigError reports a style engine that does not expose the surface the
// matcher reads from. It is fatal: nothing can be asserted without it.
type ConfigError struct {
	Engine string // Go type of the engine that failed to bind
	Err    error  // All binding problems, combined with multierr
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("styletest: cannot bind to style engine %s: %v", e.Engine, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func missingHook(signature string) error {
	return fmt.Errorf("%w: %s", ErrMissingHook, signature)
}
