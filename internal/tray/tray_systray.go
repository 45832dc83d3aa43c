//go:build cgo || windows

package tray

import (
	"context"

	"github.com/getlantern/systray"

	"github.com/example/scripthub/internal/logging"
)

// Run starts the systray loop and blocks until it exits.
func (c *Controller) Run(ctx context.Context) error {
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go systray.Run(func() {
		if c.icon != nil {
			systray.SetIcon(c.icon)
			setTemplateIcon(c.icon)
		}
		systray.SetTooltip(Tooltip)

		for _, entry := range Entries() {
			mi := systray.AddMenuItem(entry.Label, entry.Tooltip)
			go c.listen(ctx, entry.ID, mi.ClickedCh)
		}
		logging.Debugf("tray ready")
	}, func() {
		close(done)
	})

	select {
	case <-ctx.Done():
		systray.Quit()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (c *Controller) listen(ctx context.Context, id EntryID, clicks <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-clicks:
			if !ok {
				return
			}
			if c.dispatch(id) {
				systray.Quit()
				return
			}
		}
	}
}
