package relay

import (
	"context"
	"time"

	"github.com/reactivex/rxgo/v2"
	"github.com/rs/zerolog/log"
)

func LogStatus(status Status) {
	log.Info().
		Int("cameras", status.Cameras).
		Int("viewers", status.Viewers).
		Msg("status")
}

// StartStatusLog reports a registry snapshot every interval until ctx is done.
// The counts are informational only.
func StartStatusLog(ctx context.Context, registry *Registry, interval time.Duration, report func(Status)) rxgo.Disposed {
	return rxgo.Interval(rxgo.WithDuration(interval), rxgo.WithContext(ctx)).
		Map(func(_ context.Context, _ interface{}) (interface{}, error) {
			return registry.Status(), nil
		}).
		DoOnNext(func(i interface{}) {
			report(i.(Status))
		})
}
