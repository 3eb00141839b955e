package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the registry served on /metrics. It only holds relay metrics.
var Metrics = prometheus.NewRegistry()

var (
	factory = promauto.With(Metrics)

	camerasGauge = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ogu_watcher_cameras",
		Help: "Cameras currently registered.",
	})
	viewersGauge = factory.NewGauge(prometheus.GaugeOpts{
		Name: "ogu_watcher_viewers",
		Help: "Viewers currently connected.",
	})
	framesRelayed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ogu_watcher_frames_relayed_total",
		Help: "Binary payloads accepted for routing, by payload kind.",
	}, []string{"kind"})
	framesDropped = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ogu_watcher_frames_dropped_total",
		Help: "Binary payloads discarded before routing, by reason.",
	}, []string{"reason"})
	sendFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ogu_watcher_send_failures_total",
		Help: "Per-target send failures during fan-out, by reason.",
	}, []string{"reason"})
	controlMessages = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ogu_watcher_control_messages_total",
		Help: "Control messages received, by type.",
	}, []string{"type"})
)

// trackRegistry keeps the gauges in line with registry lifecycle events.
func trackRegistry(registry *Registry) {
	update := func() {
		status := registry.Status()
		camerasGauge.Set(float64(status.Cameras))
		viewersGauge.Set(float64(status.Viewers))
	}
	registry.OnCameraConnected(func(string, string) { update() })
	registry.OnCameraDisconnected(func(string) { update() })
	registry.OnViewerConnected(func(string) { update() })
	registry.OnViewerDisconnected(func(string) { update() })
}
