package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	Settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dice_settlements_total",
			Help: "Settlement attempts by final state",
		},
		[]string{"state"},
	)

	PayoutTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dice_payout_total",
			Help: "Sum of payouts transferred from the vault",
		},
	)

	BetsPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dice_bets_placed_total",
			Help: "Total bets placed",
		},
	)

	Refunds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dice_refunds_total",
			Help: "Total expired bets refunded",
		},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(HttpRequests)
		prometheus.MustRegister(Settlements)
		prometheus.MustRegister(PayoutTotal)
		prometheus.MustRegister(BetsPlaced)
		prometheus.MustRegister(Refunds)
	})
}
