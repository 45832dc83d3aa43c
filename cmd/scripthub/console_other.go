//go:build !windows

package main

// Only Windows attaches a console to a GUI launch; --console is accepted
// and ignored elsewhere.
const consoleFlagSupported = false
