package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStorefrontMetricsCounters(t *testing.T) {
	m := NewStorefrontMetrics(prometheus.NewRegistry())
	m.IncMutation("add_to_cart")
	m.IncMutation("add_to_cart")
	m.IncStateFailure("save", "cart")
	m.IncNotification("success")
	m.IncNotification("")
	m.SetCatalogSize(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.stateMutations.WithLabelValues("add_to_cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stateFailures.WithLabelValues("save", "cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("unknown")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.catalogSize))
}

func TestNilStorefrontMetricsIsNoop(t *testing.T) {
	var m *StorefrontMetrics
	assert.NotPanics(t, func() {
		m.IncMutation("x")
		m.IncStateFailure("save", "cart")
		m.IncNotification("info")
		m.SetCatalogSize(1)
		NewStorefrontMetrics(nil).IncMutation("x")
	})
}
