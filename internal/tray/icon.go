package tray

import _ "embed"

//go:embed assets/icon.png
var defaultIconData []byte

// Icon returns the tray icon in the format the current platform expects.
func Icon() []byte {
	icon := platformIcon(defaultIconData)
	if len(icon) == 0 {
		return nil
	}
	cp := make([]byte, len(icon))
	copy(cp, icon)
	return cp
}
