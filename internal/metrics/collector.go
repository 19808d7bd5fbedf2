package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	corrections    *prometheus.CounterVec
	swaps          prometheus.Counter
	promoteIgnored prometheus.Counter
	playRejected   prometheus.Counter
	activeSessions prometheus.Gauge
	chatPollErrors prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		corrections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "multiview_enforcement_corrections_total",
			Help: "Element writes made by the enforcement loop, by kind",
		}, []string{"kind"}),
		swaps: f.NewCounter(prometheus.CounterOpts{
			Name: "multiview_swaps_total",
			Help: "Main stream swaps started",
		}),
		promoteIgnored: f.NewCounter(prometheus.CounterOpts{
			Name: "multiview_promote_ignored_total",
			Help: "Promote requests ignored because a swap was in flight",
		}),
		playRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "multiview_play_rejected_total",
			Help: "Play calls rejected by the platform autoplay policy",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "multiview_sessions_active",
			Help: "Viewer sessions currently running",
		}),
		chatPollErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "multiview_chat_poll_errors_total",
			Help: "Chat polls skipped because of an error",
		}),
	}
}

func (c *Collector) Correction(kind string) {
	c.corrections.WithLabelValues(kind).Inc()
}

func (c *Collector) Swap() {
	c.swaps.Inc()
}

func (c *Collector) PromoteIgnored() {
	c.promoteIgnored.Inc()
}

func (c *Collector) PlayRejected() {
	c.playRejected.Inc()
}

func (c *Collector) SessionStarted() {
	c.activeSessions.Inc()
}

func (c *Collector) SessionEnded() {
	c.activeSessions.Dec()
}

func (c *Collector) ChatPollFailed() {
	c.chatPollErrors.Inc()
}
