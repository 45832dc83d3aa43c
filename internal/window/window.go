// Package window models the frontend's main window. The webview itself lives
// in the frontend host; this side tracks the requested state and publishes
// every change so the host can apply it.
package window

import (
	"sync"

	"github.com/example/scripthub/internal/logging"
)

// Action names the change carried by an Event.
type Action string

const (
	ActionShow       Action = "show"
	ActionHide       Action = "hide"
	ActionUnminimize Action = "unminimize"
	ActionFocus      Action = "focus"
)

// State is a snapshot of the window as last requested.
type State struct {
	Visible   bool `json:"visible"`
	Minimized bool `json:"minimized"`
	Focused   bool `json:"focused"`
}

// Event is published to subscribers on every state change.
type Event struct {
	Action Action `json:"action"`
	State  State  `json:"state"`
}

// Window is the handle commands and the tray operate on.
type Window interface {
	Show()
	Hide()
	Unminimize()
	Focus()
	State() State
}

// Remote is a Window whose real surface is driven by event subscribers.
type Remote struct {
	frontendURL string
	open        func(string)

	mu    sync.Mutex
	state State
	subs  map[chan Event]struct{}
}

// NewRemote creates the main window handle. When hidden is true the window
// starts invisible, as it does for an autostart launch.
func NewRemote(frontendURL string, hidden bool) *Remote {
	return &Remote{
		frontendURL: frontendURL,
		open:        openURL,
		state:       State{Visible: !hidden, Focused: !hidden},
		subs:        make(map[chan Event]struct{}),
	}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release it; the channel is closed afterwards.
func (w *Remote) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, ch)
			w.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports how many listeners are attached.
func (w *Remote) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

func (w *Remote) Show() {
	attached := w.apply(ActionShow, func(s *State) { s.Visible = true })
	if attached == 0 && w.frontendURL != "" && w.open != nil {
		logging.Debugf("no frontend attached; opening %s", w.frontendURL)
		w.open(w.frontendURL)
	}
}

func (w *Remote) Hide() {
	w.apply(ActionHide, func(s *State) {
		s.Visible = false
		s.Focused = false
	})
}

func (w *Remote) Unminimize() {
	w.apply(ActionUnminimize, func(s *State) { s.Minimized = false })
}

func (w *Remote) Focus() {
	w.apply(ActionFocus, func(s *State) { s.Focused = true })
}

func (w *Remote) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Reveal runs the tray "show" sequence: show, unminimize, focus.
func Reveal(w Window) {
	w.Show()
	w.Unminimize()
	w.Focus()
}

// apply mutates the state and fans the event out. Slow subscribers lose the
// oldest pending event rather than blocking the caller.
func (w *Remote) apply(action Action, mutate func(*State)) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	mutate(&w.state)
	ev := Event{Action: action, State: w.state}
	for ch := range w.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
	logging.Debugf("window %s -> %+v (%d subscribers)", action, w.state, len(w.subs))
	return len(w.subs)
}
