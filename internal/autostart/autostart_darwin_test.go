//go:build darwin

package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchAgentLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m := &Manager{AppID: "com.scripthub.app", Name: "ScriptHub", Executable: "/Applications/Script & Hub.app/Contents/MacOS/scripthub", Args: []string{MinimizedFlag}}
	require.NoError(t, m.Enable())

	data, err := os.ReadFile(filepath.Join(home, "Library", "LaunchAgents", "com.scripthub.app.plist"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<string>com.scripthub.app</string>")
	assert.Contains(t, string(data), "Script &amp; Hub.app")
	assert.Contains(t, string(data), "<string>--minimized</string>")

	enabled, err := m.IsEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, m.Disable())
	enabled, err = m.IsEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)
}
