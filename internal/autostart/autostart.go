// Package autostart registers the host to launch at login with --minimized.
package autostart

import (
	"fmt"
	"os"
	"strings"
)

// MinimizedFlag is passed to autostarted launches so the window stays hidden.
const MinimizedFlag = "--minimized"

// Manager enables, disables and inspects the launch-at-login entry.
type Manager struct {
	// AppID names the entry (LaunchAgent label, .desktop file, Run value).
	AppID string
	// Name is the human readable application name.
	Name       string
	Executable string
	Args       []string
}

// New returns a Manager for the running executable.
func New(appID, name string) (*Manager, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable: %w", err)
	}
	return &Manager{AppID: appID, Name: name, Executable: exe, Args: []string{MinimizedFlag}}, nil
}

func (m *Manager) Enable() error {
	if err := m.validate(); err != nil {
		return err
	}
	return m.enable()
}

// Disable removes the entry. A missing entry is not an error.
func (m *Manager) Disable() error {
	if err := m.validate(); err != nil {
		return err
	}
	return m.disable()
}

func (m *Manager) IsEnabled() (bool, error) {
	if err := m.validate(); err != nil {
		return false, err
	}
	return m.isEnabled()
}

func (m *Manager) validate() error {
	if strings.TrimSpace(m.AppID) == "" {
		return fmt.Errorf("autostart: missing app id")
	}
	if strings.ContainsAny(m.AppID, `/\`) {
		return fmt.Errorf("autostart: invalid app id %q", m.AppID)
	}
	if strings.TrimSpace(m.Executable) == "" {
		return fmt.Errorf("autostart: missing executable")
	}
	return nil
}

func (m *Manager) displayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.AppID
}

// commandLine joins the executable and arguments, quoted for the platform.
func (m *Manager) commandLine() string {
	parts := make([]string, 0, len(m.Args)+1)
	parts = append(parts, quoteArg(m.Executable))
	for _, arg := range m.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}
