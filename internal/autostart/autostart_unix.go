//go:build !windows && !darwin

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (m *Manager) entryPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	return filepath.Join(base, "autostart", m.AppID+".desktop"), nil
}

func (m *Manager) desktopEntry() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Version=1.0\n")
	fmt.Fprintf(&b, "Name=%s\n", m.displayName())
	fmt.Fprintf(&b, "Comment=%s startup script\n", m.displayName())
	fmt.Fprintf(&b, "Exec=%s\n", m.commandLine())
	b.WriteString("StartupNotify=false\n")
	b.WriteString("Terminal=false\n")
	return b.String()
}

func (m *Manager) enable() error {
	path, err := m.entryPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure autostart directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(m.desktopEntry()), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func (m *Manager) disable() error {
	path, err := m.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

func (m *Manager) isEnabled() (bool, error) {
	path, err := m.entryPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat autostart entry: %w", err)
	}
}
