package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "omnicart"

// StorefrontMetrics counts cart, wishlist and client-state activity.
// A nil *StorefrontMetrics is valid and records nothing.
type StorefrontMetrics struct {
	stateMutations *prometheus.CounterVec
	stateFailures  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	catalogSize    prometheus.Gauge
}

// NewStorefrontMetrics registers the storefront collectors on reg.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_mutations_total",
		Help:      "Cart and wishlist mutations by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_state_failures_total",
		Help:      "Client-state reads or writes that failed and fell back to memory.",
	}, []string{"op", "key"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Transient notifications shown by severity.",
	}, []string{"severity"})
	catalogSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Products in the currently loaded catalog snapshot.",
	})
	reg.MustRegister(mutations, failures, notifications, catalogSize)
	return &StorefrontMetrics{
		stateMutations: mutations,
		stateFailures:  failures,
		notifications:  notifications,
		catalogSize:    catalogSize,
	}
}

// IncMutation counts one cart or wishlist operation.
func (m *StorefrontMetrics) IncMutation(op string) {
	if m == nil || m.stateMutations == nil {
		return
	}
	m.stateMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncStateFailure counts a degraded client-state read or write.
func (m *StorefrontMetrics) IncStateFailure(op, key string) {
	if m == nil || m.stateFailures == nil {
		return
	}
	m.stateFailures.WithLabelValues(normalizeLabel(op), normalizeLabel(key)).Inc()
}

// IncNotification counts a shown notification.
func (m *StorefrontMetrics) IncNotification(severity string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(severity)).Inc()
}

// SetCatalogSize records the product count of the active catalog snapshot.
func (m *StorefrontMetrics) SetCatalogSize(n int) {
	if m == nil || m.catalogSize == nil {
		return
	}
	m.catalogSize.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
