package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики движка корзины и checkout.
type CartMetrics struct {
	// Счётчики мутаций корзины по виду операции (add/decrement/remove).
	cartMutations *prometheus.CounterVec
	// Счётчик откатов локального состояния после отказа удалённого хранилища.
	cartRollbacks prometheus.Counter

	// Счётчики checkout.
	checkoutStarted   prometheus.Counter
	checkoutCompleted prometheus.Counter
	checkoutFailed    prometheus.Counter
	checkoutRetried   prometheus.Counter

	// Гистограмма времени checkout.
	checkoutDuration prometheus.Histogram

	// Счётчики вспомогательных каналов.
	notifications *prometheus.CounterVec
	outboxEvents  prometheus.Counter
}

// NewCartMetrics создаёт новый экземпляр метрик корзины.
func NewCartMetrics() *CartMetrics {
	return newCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "houseit_cart_mutations_total",
			Help: "Total number of cart mutations grouped by operation",
		}, []string{"op"}),
		cartRollbacks: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_cart_rollbacks_total",
			Help: "Total number of local cart rollbacks after remote store failures",
		}),
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_checkout_started_total",
			Help: "Total number of checkout attempts started",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_checkout_completed_total",
			Help: "Total number of checkouts completed successfully",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_checkout_failed_total",
			Help: "Total number of checkouts failed",
		}),
		checkoutRetried: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_checkout_retried_total",
			Help: "Total number of checkout retries reusing a pinned booking request",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "houseit_checkout_duration_seconds",
			Help:    "Duration of checkout operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "houseit_notifications_total",
			Help: "Total number of user notifications grouped by kind",
		}, []string{"kind"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "houseit_outbox_events_total",
			Help: "Total number of booking events enqueued to outbox",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation увеличивает счётчик мутаций корзины для операции op.
func (m *CartMetrics) RecordMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// RecordRollback увеличивает счётчик откатов.
func (m *CartMetrics) RecordRollback() {
	m.cartRollbacks.Inc()
}

// RecordCheckoutStarted увеличивает счётчик начатых checkout.
func (m *CartMetrics) RecordCheckoutStarted() {
	m.checkoutStarted.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик успешных checkout.
func (m *CartMetrics) RecordCheckoutCompleted() {
	m.checkoutCompleted.Inc()
}

// RecordCheckoutFailed увеличивает счётчик неудачных checkout.
func (m *CartMetrics) RecordCheckoutFailed() {
	m.checkoutFailed.Inc()
}

// RecordCheckoutRetried увеличивает счётчик повторов с закреплённой заявкой.
func (m *CartMetrics) RecordCheckoutRetried() {
	m.checkoutRetried.Inc()
}

// RecordCheckoutDuration записывает время выполнения checkout.
func (m *CartMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordNotification увеличивает счётчик показанных уведомлений.
func (m *CartMetrics) RecordNotification(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CartMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
