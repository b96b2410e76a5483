// Package systemd reports service state to the service manager.
package systemd

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// NotifyFunc sends a state string such as "READY=1". It reports false when
// no service manager is listening. daemon.SdNotify has this shape.
type NotifyFunc func(unsetEnvironment bool, state string) (bool, error)

// Notifier sends sd_notify messages. The zero value is not usable; use
// NewNotifier.
type Notifier struct {
	notify NotifyFunc
}

// NewNotifier returns a notifier. A nil fn uses daemon.SdNotify.
func NewNotifier(fn NotifyFunc) *Notifier {
	if fn == nil {
		fn = daemon.SdNotify
	}
	return &Notifier{notify: fn}
}

// Ready reports that startup has finished.
func (n *Notifier) Ready() (bool, error) {
	return n.notify(false, daemon.SdNotifyReady)
}

// Stopping reports that shutdown has begun.
func (n *Notifier) Stopping() (bool, error) {
	return n.notify(false, daemon.SdNotifyStopping)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) (bool, error) {
	return n.notify(false, "STATUS="+status)
}

// Watchdog pings the service manager at half the configured WatchdogSec
// until ctx is done. It returns immediately when no watchdog is set.
func (n *Notifier) Watchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	n.keepAlive(ctx, interval/2)
}

func (n *Notifier) keepAlive(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = n.notify(false, daemon.SdNotifyWatchdog)
		}
	}
}
