// Package credential resolves the GitHub token the frontend uses, trying the
// git credential helper first and the environment second.
package credential

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/example/scripthub/internal/logging"
)

// Source is a single place a token can come from. Lookup reports ok=false for
// a lookup miss; err is reserved for failures of the source itself.
type Source interface {
	Name() string
	Lookup(ctx context.Context) (token string, ok bool, err error)
}

// ExecError reports that the credential helper could not be started or waited
// on. It is never returned for a helper that ran and found nothing.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("failed to execute %s credential: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Resolution is a token together with the name of the source that produced it.
type Resolution struct {
	Token  string
	Source string
}

// Chain tries each source in order until one yields a token.
type Chain []Source

// Resolve returns the first token found. Source errors do not stop the chain;
// they are returned only when no later source produced a token.
func (c Chain) Resolve(ctx context.Context) (Resolution, bool, error) {
	var errs error
	for _, src := range c {
		if err := ctx.Err(); err != nil {
			return Resolution{}, false, multierr.Append(errs, err)
		}

		token, ok, err := src.Lookup(ctx)
		if err != nil {
			logging.Debugf("credential source %s failed: %v", src.Name(), err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if ok && token != "" {
			logging.Debugf("credential resolved from %s (%s)", src.Name(), logging.MaskIdentifier(token))
			return Resolution{Token: token, Source: src.Name()}, true, nil
		}
		logging.Debugf("credential source %s had no token", src.Name())
	}
	return Resolution{}, false, errs
}
