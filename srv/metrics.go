package srv

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/docgrid/docgrid/hub"
)

type metrics struct {
	registry       *prometheus.Registry
	fieldMutations *prometheus.CounterVec
	documentWrites *prometheus.CounterVec
}

func newMetrics(h *hub.Hub) *metrics {
	reg := prometheus.NewRegistry()

	m := &metrics{
		registry: reg,
		fieldMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgrid_field_mutations_total",
			Help: "Schema field mutations by operation and result.",
		}, []string{"op", "result"}),
		documentWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgrid_document_writes_total",
			Help: "Document create/update/delete operations by result.",
		}, []string{"op", "result"}),
	}

	reg.MustRegister(
		m.fieldMutations,
		m.documentWrites,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "docgrid_editor_connections",
			Help: "Live editor connections.",
		}, func() float64 { return float64(h.ConnectionCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "docgrid_rooms",
			Help: "Rooms with at least one member.",
		}, func() float64 { return float64(h.RoomCount()) }),
	)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
