// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CampaignLaunches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campaign_launches_total",
		Help: "Number of campaign launches started.",
	})
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Messages accepted by the provider.",
	})
	MessagesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messages_failed_total",
		Help: "Messages that failed rendering or sending.",
	})
	DeliveryReceipts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_receipts_total",
		Help: "Provider status callbacks received, by mapped message state.",
	}, []string{"status"})
	InboundEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inbound_events_total",
		Help: "Inbound messages received.",
	})
)

func init() {
	prometheus.MustRegister(
		CampaignLaunches,
		MessagesSent,
		MessagesFailed,
		DeliveryReceipts,
		InboundEvents,
	)
}
