//go:build !windows && !darwin

package window

import "os/exec"

func launcher(raw string) *exec.Cmd {
	return exec.Command("xdg-open", raw)
}
