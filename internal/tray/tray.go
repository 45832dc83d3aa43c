// Package tray owns the notification-area icon and its menu.
package tray

import (
	"errors"

	"github.com/example/scripthub/internal/logging"
)

const Tooltip = "ScriptHub - Script Manager"

// ErrUnavailable is returned by Run on builds without a tray backend.
var ErrUnavailable = errors.New("system tray is unavailable without cgo support")

// Handler receives the tray menu actions.
type Handler interface {
	ShowMainWindow()
	Quit()
}

// EntryID identifies a tray menu entry.
type EntryID string

const (
	EntryShow EntryID = "show"
	EntryQuit EntryID = "quit"
)

// Entry is one clickable line of the tray menu.
type Entry struct {
	ID      EntryID
	Label   string
	Tooltip string
}

// Entries lists the menu in display order.
func Entries() []Entry {
	return []Entry{
		{ID: EntryShow, Label: "Show ScriptHub", Tooltip: "Show the main window"},
		{ID: EntryQuit, Label: "Quit", Tooltip: "Exit ScriptHub"},
	}
}

// Controller runs the tray icon until the context ends or Quit is chosen.
type Controller struct {
	handler Handler
	icon    []byte
}

// New builds a Controller that forwards menu clicks to h.
func New(h Handler) *Controller {
	return &Controller{handler: h, icon: Icon()}
}

// dispatch routes a click to the handler. It reports whether the tray loop
// should stop.
func (c *Controller) dispatch(id EntryID) bool {
	if c.handler == nil {
		return id == EntryQuit
	}
	logging.Debugf("tray entry %q clicked", id)
	switch id {
	case EntryShow:
		c.handler.ShowMainWindow()
		return false
	case EntryQuit:
		c.handler.Quit()
		return true
	default:
		logging.Warnf("unknown tray entry %q", id)
		return false
	}
}
