package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salesrecon",
		Subsystem: "recon",
		Name:      "runs_total",
		Help:      "Total reconciliation runs.",
	})

	DiffItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salesrecon",
		Subsystem: "recon",
		Name:      "diff_items_total",
		Help:      "Diff items produced, broken down by kind.",
	}, []string{"kind"})

	ScanRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salesrecon",
		Subsystem: "scan",
		Name:      "records_total",
		Help:      "Ledger scan outcomes: added, transferred or unchanged.",
	}, []string{"outcome"})

	AppliedResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salesrecon",
		Subsystem: "recon",
		Name:      "applied_resolutions_total",
		Help:      "Operator resolutions that produced a roster mutation.",
	})
)
