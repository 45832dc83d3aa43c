//go:build darwin

package window

import "os/exec"

func launcher(raw string) *exec.Cmd {
	return exec.Command("open", raw)
}
