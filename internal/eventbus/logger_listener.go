package eventbus

import (
	"context"

	"github.com/annel0/zone-streamer/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		zev, err := DecodeZoneEvent(ev)
		if err != nil {
			logging.Debug("[EventBus] %s %s src=%s size=%dB", ev.ID, ev.EventType, ev.Source, len(ev.Payload))
			return
		}
		switch zev.Type {
		case TypeZoneLoadFailed:
			logging.Warn("[EventBus] %s зона %d: %s", zev.Type, zev.ZoneID, zev.Error)
		default:
			logging.Debug("[EventBus] %s зона %d req=%s", zev.Type, zev.ZoneID, zev.RequestID)
		}
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
