package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/isomerc/nicotine/internal/logger"
)

const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"

	appName       = "nicotine"
	expireTimeout = int32(5000)
)

// Notifier sends desktop notifications over the session bus. When disabled,
// or when no notification daemon is reachable, messages are only logged.
type Notifier struct {
	enabled bool

	once sync.Once
	obj  dbus.BusObject
	err  error
}

// New creates a notifier; the bus connection is made on first use
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

func newWithObject(obj dbus.BusObject) *Notifier {
	n := &Notifier{enabled: true, obj: obj}
	n.once.Do(func() {})
	return n
}

// Notify shows summary and body as a desktop notification
func (n *Notifier) Notify(summary, body string) error {
	log := logger.WithComponent("notify")
	log.Debug().Str("summary", summary).Str("body", body).Msg("Sending notification")

	if !n.enabled {
		return nil
	}

	obj, err := n.object()
	if err != nil {
		return err
	}

	call := obj.Call(notificationsInterface+".Notify", 0,
		appName,
		uint32(0),
		"dialog-warning",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("notification failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		log.Debug().Uint32("notification_id", id).Msg("Notification sent")
	}
	return nil
}

func (n *Notifier) object() (dbus.BusObject, error) {
	n.once.Do(func() {
		conn, err := dbus.SessionBus()
		if err != nil {
			n.err = fmt.Errorf("failed to connect to session bus: %w", err)
			return
		}
		n.obj = conn.Object(notificationsService, dbus.ObjectPath(notificationsPath))
	})
	return n.obj, n.err
}
