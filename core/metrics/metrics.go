package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	CatalogFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_total",
			Help: "Catalog fetches by result (ok, fetch_error, parse_error)",
		},
		[]string{"result"},
	)
	CatalogRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rows_total",
			Help: "Catalog rows by outcome (accepted, dropped)",
		},
		[]string{"outcome"},
	)
	OneDriveResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onedrive_resolve_total",
			Help: "OneDrive short-link resolutions by result (resolved, unresolved)",
		},
		[]string{"result"},
	)
	PushDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_delivery_total",
			Help: "Web push deliveries by result (ok, failed)",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		CatalogFetches,
		CatalogRows,
		OneDriveResolutions,
		PushDeliveries,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
