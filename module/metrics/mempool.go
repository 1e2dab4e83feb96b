package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

// MempoolCollector tracks the inbound queues of the engines.
type MempoolCollector struct {
	entries *prometheus.GaugeVec
}

var _ module.MempoolMetrics = (*MempoolCollector)(nil)

func NewMempoolCollector(registerer prometheus.Registerer) *MempoolCollector {
	return &MempoolCollector{
		entries: promauto.With(registerer).NewGaugeVec(prometheus.GaugeOpts{
			Name:      "entries_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMempool,
			Help:      "the number of entries in the mempool",
		}, []string{LabelResource}),
	}
}

func (mc *MempoolCollector) MempoolEntries(resource string, entries uint) {
	mc.entries.With(prometheus.Labels{LabelResource: resource}).Set(float64(entries))
}
