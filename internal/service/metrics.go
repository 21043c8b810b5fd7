package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	expensesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tallyup",
		Name:      "expenses_created_total",
		Help:      "Total number of expenses created",
	})
	settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tallyup",
		Name:      "settlements_total",
		Help:      "Total number of settlement calls by outcome",
	}, []string{"outcome"})
	paymentsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tallyup",
		Name:      "payments_applied_total",
		Help:      "Total number of payment rows inserted by settlements",
	})
	settleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tallyup",
		Name:      "settle_duration_seconds",
		Help:      "Duration of settlement transactions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)
