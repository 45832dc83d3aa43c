//go:build windows

package main

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/example/scripthub/internal/logging"
)

const consoleFlagSupported = true

// A tray host launched from Explorer should not leave a console window behind.
// This runs before cobra parses flags, so --console is inspected by hand.
func init() {
	if keepConsole(os.Args[1:], os.Getenv("SCRIPTHUB_SHOW_CONSOLE")) {
		return
	}
	detachConsole()
	redirectLogs()
}

// redirectLogs moves logging to a file; stderr died with the console.
func redirectLogs() {
	path, err := logging.DefaultLogFile()
	if err != nil {
		return
	}
	if _, err := logging.SetOutputFile(path); err != nil {
		return
	}
	logging.Debugf("console detached; logging to %s", path)
}

func keepConsole(args []string, envValue string) bool {
	if strings.TrimSpace(envValue) != "" {
		return true
	}

	for _, raw := range args {
		if raw == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(strings.TrimSpace(raw), "-"), "=")
		if !strings.EqualFold(name, "console") {
			continue
		}
		if !hasValue {
			return true
		}
		if on, err := strconv.ParseBool(value); err == nil && on {
			return true
		}
	}
	return false
}

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	user32   = windows.NewLazySystemDLL("user32.dll")

	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
	procFreeConsole      = kernel32.NewProc("FreeConsole")
	procShowWindow       = user32.NewProc("ShowWindow")
)

func detachConsole() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return
	}
	procShowWindow.Call(hwnd, windows.SW_HIDE)
	procFreeConsole.Call()
}
