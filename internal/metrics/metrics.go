package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecalcRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_recalculation_runs_total",
		Help: "Bulk template recalculation runs.",
	})

	TemplatesRecalculated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_templates_recalculated_total",
		Help: "Templates successfully repriced by bulk recalculation.",
	})

	RecalcErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taller_template_recalc_errors_total",
		Help: "Templates that failed during bulk recalculation.",
	})

	SalesPriced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taller_sales_priced_total",
		Help: "Sales priced at creation/update, by snapshot source.",
	}, []string{"source"})
)
