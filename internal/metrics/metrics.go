package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lifecycle metrics - contest state transitions
var (
	ContestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contest_platform_contests_created_total",
		Help: "Total number of contests created",
	})

	ContestsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contest_platform_contests_finalized_total",
		Help: "Total number of contests with winners declared",
	})

	ContestsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contest_platform_contests_cancelled_total",
		Help: "Total number of contests cancelled by their creator",
	})

	PrizesClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contest_platform_prizes_claimed_total",
		Help: "Total number of prize claims paid out",
	})

	EmergencyWithdrawals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contest_platform_emergency_withdrawals_total",
		Help: "Total number of stale contest sweeps",
	})
)

// Fee metrics
var (
	FeesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_platform_fees_collected_total",
			Help: "Fee collections by asset, in base units",
		},
		[]string{"asset"},
	)
)

// Request metrics
var (
	RequestsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_platform_requests_rejected_total",
			Help: "Rejected operations by reason",
		},
		[]string{"reason"},
	)

	EventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contest_platform_event_subscribers",
		Help: "Open websocket event subscriptions",
	})
)

// RegisterActiveContests exposes the running-contest count as a gauge sampled
// at scrape time, so the value always reflects the registry rather than a
// counter that has to be kept in step with every lifecycle path.
func RegisterActiveContests(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "contest_platform_active_contests",
		Help: "Contests currently running",
	}, func() float64 {
		return float64(count())
	})
}
