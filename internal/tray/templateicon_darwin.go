//go:build darwin && cgo

package tray

import "github.com/getlantern/systray"

// setTemplateIcon lets macOS recolor the icon for light and dark menu bars.
func setTemplateIcon(icon []byte) {
	systray.SetTemplateIcon(icon, icon)
}
