//go:build !windows

package credential

import "os/exec"

func hideWindow(*exec.Cmd) {}
