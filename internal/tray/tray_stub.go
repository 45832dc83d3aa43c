//go:build !cgo && !windows

package tray

import "context"

// Run reports ErrUnavailable; the application keeps running headless.
func (c *Controller) Run(_ context.Context) error {
	return ErrUnavailable
}
