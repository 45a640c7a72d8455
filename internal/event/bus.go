// Package event is the change-notification side of the photo cache.
// Writers publish after a commit succeeds; the UI and the CLI subscribe.
package event

import (
	"github.com/leandro-lugaresi/hub"

	"github.com/abelbrown/tourist/internal/logging"
)

type Data = hub.Fields
type Message = hub.Message
type Subscription = hub.Subscription

// Topics. Dot-delimited so subscribers can use "photo.*".
const (
	PinAdded       = "pin.added"
	PinDeleted     = "pin.deleted"
	PhotosReplaced = "photos.replaced"
	PhotosDeleted  = "photos.deleted"
	AlbumEmpty     = "album.empty"
	PhotoHydrating = "photo.hydrating"
	PhotoHydrated  = "photo.hydrated"
	PhotoFailed    = "photo.failed"
	NotifyError    = "notify.error"
	NotifyInfo     = "notify.info"
)

// Field keys used in Data.
const (
	KeyPin      = "pin"
	KeyPhoto    = "photo"
	KeyInserted = "inserted"
	KeyDeleted  = "deleted"
	KeyError    = "error"
	KeyMessage  = "message"
	KeySize     = "size"
)

var channelCap = 100

// Bus wraps a hub. One per process, created in main and passed down.
type Bus struct {
	hub *hub.Hub
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{hub: hub.New()}
}

// Publish sends data to every subscriber of topic.
func (b *Bus) Publish(topic string, data Data) {
	b.hub.Publish(Message{
		Name:   topic,
		Fields: data,
	})
}

// Subscribe returns a subscription that never drops messages. The caller
// must keep draining Receiver or publishers will block.
func (b *Bus) Subscribe(topics ...string) Subscription {
	return b.hub.Subscribe(channelCap, topics...)
}

// Watch returns a subscription that drops messages when its buffer is full.
func (b *Bus) Watch(topics ...string) Subscription {
	return b.hub.NonBlockingSubscribe(channelCap, topics...)
}

// Unsubscribe removes s from the bus.
func (b *Bus) Unsubscribe(s Subscription) {
	b.hub.Unsubscribe(s)
}

// Close unsubscribes everyone.
func (b *Bus) Close() {
	b.hub.Close()
}

// Error logs msg and publishes it as a user-facing notice.
func (b *Bus) Error(msg string) {
	logging.Error(msg)
	b.Publish(NotifyError, Data{KeyMessage: msg})
}

// Info logs msg and publishes it as a user-facing notice.
func (b *Bus) Info(msg string) {
	logging.Info(msg)
	b.Publish(NotifyInfo, Data{KeyMessage: msg})
}
