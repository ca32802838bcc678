// Package metrics holds the Prometheus instruments for the enrichment and
// import pipeline, registered on the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EnrichmentsTotal counts enrichment outcomes. path is "async" or
	// "sync"; outcome is "complete", "degraded" (complete with zero fields
	// recovered) or "failed".
	EnrichmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkmark_enrichments_total",
		Help: "Enrichment outcomes by dispatch path and result.",
	}, []string{"path", "outcome"})

	// ImportedBookmarksTotal counts records handled by the import entry
	// point. result is "imported" or "skipped".
	ImportedBookmarksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkmark_imported_bookmarks_total",
		Help: "Import results by file format.",
	}, []string{"format", "result"})

	// LinkChecksTotal counts link-audit checks. result is "ok" or "broken".
	LinkChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkmark_link_checks_total",
		Help: "Link audit check results.",
	}, []string{"result"})
)
