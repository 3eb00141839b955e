package relay

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

type Broadcaster struct {
	registry *Registry
	// listMu keeps camera-list snapshots reaching viewers in the order they were taken
	listMu sync.Mutex
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// BroadcastCameraList encodes the current camera list once and sends it to
// every open viewer.
func (b *Broadcaster) BroadcastCameraList() {
	b.listMu.Lock()
	defer b.listMu.Unlock()

	message := encodeCameraList(b.registry.ListCameras())
	b.Relay("camera-list", []Frame{message}, b.registry.Viewers()...)
}

func (b *Broadcaster) SendCameraList(viewer *Connection) {
	b.listMu.Lock()
	defer b.listMu.Unlock()

	message := encodeCameraList(b.registry.ListCameras())
	b.Relay("camera-list", []Frame{message}, viewer)
}

// Relay sends parts, in order and as one unit, to each target. Targets that
// are not open are skipped. A failed send is logged and the fan-out goes on.
// Returns the number of targets that accepted the parts.
func (b *Broadcaster) Relay(kind string, parts []Frame, targets ...*Connection) int {
	delivered := 0
	for _, target := range targets {
		if !target.IsOpen() {
			continue
		}
		err := target.Send(parts...)
		if err == nil {
			delivered++
			continue
		}

		switch {
		case errors.Is(err, ErrBackpressure):
			sendFailures.WithLabelValues("backpressure").Inc()
			log.Debug().
				Str("connectionId", target.Id).
				Str("kind", kind).
				Msg("target is backpressured, dropped")
		case errors.Is(err, ErrConnectionClosed):
			sendFailures.WithLabelValues("closed").Inc()
			log.Debug().
				Str("connectionId", target.Id).
				Str("kind", kind).
				Msg("target closed during fan-out")
		default:
			sendFailures.WithLabelValues("error").Inc()
			log.Warn().
				Err(err).
				Str("connectionId", target.Id).
				Str("kind", kind).
				Msg("send failed")
		}
	}
	return delivered
}
