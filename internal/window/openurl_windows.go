//go:build windows

package window

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func launcher(raw string) *exec.Cmd {
	cmd := exec.Command("rundll32", "url.dll,FileProtocolHandler", raw)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true, CreationFlags: windows.CREATE_NO_WINDOW}
	return cmd
}
