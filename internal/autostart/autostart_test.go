package autostart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.Error(t, (&Manager{Executable: "/bin/app"}).Enable())
	assert.Error(t, (&Manager{AppID: "../evil", Executable: "/bin/app"}).Enable())
	assert.Error(t, (&Manager{AppID: "com.scripthub.app"}).Disable())
	_, err := (&Manager{AppID: "com.scripthub.app"}).IsEnabled()
	assert.Error(t, err)
}

func TestCommandLinePlainPath(t *testing.T) {
	m := &Manager{Executable: "/usr/bin/scripthub", Args: []string{MinimizedFlag}}
	assert.Equal(t, "/usr/bin/scripthub --minimized", m.commandLine())
}

func TestNewUsesRunningExecutable(t *testing.T) {
	m, err := New("com.scripthub.app", "ScriptHub")
	if assert.NoError(t, err) {
		assert.NotEmpty(t, m.Executable)
		assert.Equal(t, []string{MinimizedFlag}, m.Args)
	}
}
