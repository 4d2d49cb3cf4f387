package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ibe"

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
	ResultNone     = "none"
)

var (
	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Refresh exchanges against the PMS refresh endpoint.",
	}, []string{"result"})

	signatures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_signatures_total",
		Help:      "Payment field sets signed.",
	}, []string{"result"})

	promotionLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotion_lookups_total",
		Help:      "Promo code evaluations.",
	}, []string{"result"})
)

func ObserveRefresh(result string) { tokenRefreshes.WithLabelValues(result).Inc() }
func ObserveSignature(result string) { signatures.WithLabelValues(result).Inc() }
func ObservePromotionLookup(result string) { promotionLookups.WithLabelValues(result).Inc() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
