package tracker_metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	KIND_DIMENSION    = "kind"
	OUTCOME_DIMENSION = "outcome"
	ACTION_DIMENSION  = "action"
	EVENT_DIMENSION   = "event"
)

var RefreshOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "threepole_playerdata_refresh_total",
		Help: "Player data refreshes by kind and outcome",
	},
	[]string{KIND_DIMENSION, OUTCOME_DIMENSION}, // kind: "current", "history"; outcome: "changed", "unchanged", "error"
)

var PollerState = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "threepole_poller_state",
		Help: "Current poller state (0 idle, 1 starting, 2 polling, 3 error)",
	},
)

var OverlayTicks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "threepole_overlay_ticks_total",
		Help: "Window tracker ticks by resulting action",
	},
	[]string{ACTION_DIMENSION}, // action: "show", "hide", "fullscreen", "self"
)

var EventsDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "threepole_events_dropped_total",
		Help: "Events dropped because a subscriber buffer was full",
	},
	[]string{EVENT_DIMENSION},
)

// Register registers all poller and tracker metrics with Prometheus
func Register() {
	prometheus.MustRegister(RefreshOutcomes)
	prometheus.MustRegister(PollerState)
	prometheus.MustRegister(OverlayTicks)
	prometheus.MustRegister(EventsDropped)
}
