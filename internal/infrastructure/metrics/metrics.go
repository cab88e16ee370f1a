package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mkru/transferd/internal/domain"
)

var (
	transactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transferd_transactions_recorded_total",
			Help: "Total number of ledger transactions recorded, by type",
		},
		[]string{"type"},
	)

	transactionAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transferd_transaction_amount",
			Help:    "Recorded transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		},
		[]string{"type"},
	)

	transactionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transferd_transaction_errors_total",
			Help: "Total number of rejected movements, by reason",
		},
		[]string{"reason"},
	)

	accountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transferd_accounts_created_total",
		Help: "Total number of accounts created",
	})
)

// ObserveTransaction records a successfully applied movement.
func ObserveTransaction(txn *domain.Transaction) {
	transactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
	amount, _ := txn.Amount.Decimal().Float64()
	transactionAmount.WithLabelValues(string(txn.Type)).Observe(amount)
}

// ObserveTransactionError counts a rejected movement by reason.
func ObserveTransactionError(reason string) {
	transactionErrors.WithLabelValues(reason).Inc()
}

// ObserveAccountCreated counts a created account.
func ObserveAccountCreated() {
	accountsCreated.Inc()
}
