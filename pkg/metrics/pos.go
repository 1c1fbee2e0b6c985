package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/eventpos-backend/pkg/enums"
)

const namespace = "eventpos"

// POSMetrics records register activity. A nil *POSMetrics is a valid no-op.
type POSMetrics struct {
	quotes            prometheus.Counter
	promotionsApplied *prometheus.CounterVec
	checkouts         *prometheus.CounterVec
	lockRefusals      *prometheus.CounterVec
	checkoutDuration  prometheus.Histogram
}

// NewPOSMetrics registers the register metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	quotes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Cart quotes computed by the pricing engine.",
	})
	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_applied_total",
		Help:      "Promotions applied to completed sales by promotion mode.",
	}, []string{"mode"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Completed sales by payment method.",
	}, []string{"payment_method"})
	refusals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_refusals_total",
		Help:      "Transaction mutations refused because the event is locked.",
	}, []string{"operation"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Duration of checkout requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(quotes, promotions, checkouts, refusals, duration)
	return &POSMetrics{
		quotes:            quotes,
		promotionsApplied: promotions,
		checkouts:         checkouts,
		lockRefusals:      refusals,
		checkoutDuration:  duration,
	}
}

// IncQuote counts one engine run.
func (m *POSMetrics) IncQuote() {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.Inc()
}

// ObserveCheckout records a completed sale. Promotions are counted by mode
// since names are operator-edited.
func (m *POSMetrics) ObserveCheckout(paymentMethod string, modes []enums.PromoMode, duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	for _, mode := range modes {
		label := "unknown"
		if mode.IsValid() {
			label = mode.String()
		}
		m.promotionsApplied.WithLabelValues(label).Inc()
	}
	m.checkoutDuration.Observe(duration.Seconds())
}

// IncLockRefusal counts an edit or delete refused on a locked event.
func (m *POSMetrics) IncLockRefusal(operation string) {
	if m == nil || m.lockRefusals == nil {
		return
	}
	m.lockRefusals.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
