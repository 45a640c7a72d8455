package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/tourist/internal/event"
)

// Topics the UI listens to.
var Topics = []string{
	event.PhotoHydrated,
	event.PhotoFailed,
	event.AlbumEmpty,
	event.NotifyError,
	event.NotifyInfo,
}

// FromEvent turns a bus message into a tea.Msg. ok is false for topics the
// UI ignores.
func FromEvent(msg event.Message) (tea.Msg, bool) {
	f := msg.Fields
	switch msg.Name {
	case event.PhotoHydrated:
		size, _ := f[event.KeySize].(int)
		return PhotoHydrated{PinID: str(f, event.KeyPin), PhotoID: str(f, event.KeyPhoto), Size: size}, true
	case event.PhotoFailed:
		return PhotoFailed{PinID: str(f, event.KeyPin), PhotoID: str(f, event.KeyPhoto), Err: str(f, event.KeyError)}, true
	case event.AlbumEmpty:
		return AlbumEmpty{PinID: str(f, event.KeyPin)}, true
	case event.NotifyError:
		return Notice{Text: str(f, event.KeyMessage), Error: true}, true
	case event.NotifyInfo:
		return Notice{Text: str(f, event.KeyMessage)}, true
	}
	return nil, false
}

func str(f event.Data, key string) string {
	s, _ := f[key].(string)
	return s
}
