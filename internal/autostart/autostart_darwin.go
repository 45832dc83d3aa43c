//go:build darwin

package autostart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

func (m *Manager) entryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", m.AppID+".plist"), nil
}

func (m *Manager) launchAgent() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString("<plist version=\"1.0\">\n<dict>\n")
	b.WriteString("  <key>Label</key>\n  <string>")
	if err := xml.EscapeText(&b, []byte(m.AppID)); err != nil {
		return nil, err
	}
	b.WriteString("</string>\n  <key>ProgramArguments</key>\n  <array>\n")
	for _, arg := range append([]string{m.Executable}, m.Args...) {
		b.WriteString("    <string>")
		if err := xml.EscapeText(&b, []byte(arg)); err != nil {
			return nil, err
		}
		b.WriteString("</string>\n")
	}
	b.WriteString("  </array>\n  <key>RunAtLoad</key>\n  <true/>\n</dict>\n</plist>\n")
	return b.Bytes(), nil
}

func (m *Manager) enable() error {
	path, err := m.entryPath()
	if err != nil {
		return err
	}
	data, err := m.launchAgent()
	if err != nil {
		return fmt.Errorf("render launch agent: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure LaunchAgents directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write launch agent: %w", err)
	}
	return nil
}

func (m *Manager) disable() error {
	path, err := m.entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove launch agent: %w", err)
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
		return false, fmt.Errorf("stat launch agent: %w", err)
	}
}
