package credential

import (
	"context"
	"os"
)

// Env reads the token from a primary variable, falling back to a second name
// when the primary is unset or empty.
type Env struct {
	Primary  string
	Fallback string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// NewEnv returns an Env source over the real process environment.
func NewEnv(primary, fallback string) *Env {
	return &Env{Primary: primary, Fallback: fallback}
}

func (e *Env) Name() string {
	return "environment"
}

// Lookup implements Source. It never fails.
func (e *Env) Lookup(context.Context) (string, bool, error) {
	token, ok := e.Resolve()
	return token, ok, nil
}

// Resolve returns the first non-empty value of Primary then Fallback.
func (e *Env) Resolve() (string, bool) {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range []string{e.Primary, e.Fallback} {
		if name == "" {
			continue
		}
		if value := getenv(name); value != "" {
			return value, true
		}
	}
	return "", false
}
