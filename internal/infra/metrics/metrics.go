package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_redemptions_total",
			Help: "Redemption attempts by outcome (success/not_found/quota_exceeded/expired/store_error).",
		},
		[]string{"result"},
	)

	cardsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_issued_total",
			Help: "Total cards created by batch issuance.",
		},
	)

	accountsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_deleted_total",
			Help: "Accounts removed via the cascading admin delete.",
		},
	)

	storeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Persistence failures observed at the use-case boundary.",
		},
	)

	cardsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cards_by_state",
			Help: "Snapshot of the card table by state (total/activated/exhausted).",
		},
		[]string{"state"},
	)

	adminLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_logins_total",
			Help: "Admin login attempts by outcome (ok/denied).",
		},
		[]string{"result"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			redemptionsTotal, cardsIssuedTotal,
			accountsDeletedTotal, storeErrorsTotal, adminLoginsTotal,
			cardsByState,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(result string) {
	redemptionsTotal.WithLabelValues(norm(result)).Inc()
}

func AddCardsIssued(n int) {
	cardsIssuedTotal.Add(float64(n))
}

func IncAccountDeleted() {
	accountsDeletedTotal.Inc()
}

func IncStoreError() {
	storeErrorsTotal.Inc()
}

func SetCardStats(total, activated, exhausted int) {
	cardsByState.WithLabelValues("total").Set(float64(total))
	cardsByState.WithLabelValues("activated").Set(float64(activated))
	cardsByState.WithLabelValues("exhausted").Set(float64(exhausted))
}

func IncAdminLogin(result string) {
	adminLoginsTotal.WithLabelValues(norm(result)).Inc()
}
