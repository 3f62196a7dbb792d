// Package metrics defines the storefront's cart and checkout instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cart action outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// Checkout outcomes.
const (
	CheckoutPlaced             = "placed"
	CheckoutRedirectedPending  = "redirected_pending"
	CheckoutRedirectedExisting = "redirected_duplicate"
	CheckoutGuardRejected      = "guard_rejected"
	CheckoutValidationFailed   = "validation_failed"
	CheckoutFailed             = "failed"
)

var (
	// CartActions counts cart actions by name and outcome.
	CartActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_actions_total",
			Help: "Total number of cart actions by outcome",
		},
		[]string{"action", "outcome"},
	)

	// CartActionDuration observes the full round trip of a dispatched action,
	// including the re-fetch.
	CartActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_cart_action_duration_seconds",
			Help:    "Cart action duration in seconds, including the cart re-fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	// CartItems is the item count of the last cart snapshot.
	CartItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_items",
		Help: "Number of items in the cart as last synchronized from the server",
	})

	// CartTotal is the server-computed total of the last cart snapshot.
	CartTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_total_amount",
		Help: "Cart total as last synchronized from the server",
	})

	// CartLoading is 1 while a cart action is in flight.
	CartLoading = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_loading",
		Help: "Whether a cart action is in flight",
	})

	// CheckoutOutcomes counts order placement attempts by branch taken.
	CheckoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_outcomes_total",
			Help: "Total number of checkout submissions by payment method and outcome",
		},
		[]string{"method", "outcome"},
	)
)

// ObserveCartAction records one dispatched cart action.
func ObserveCartAction(action, outcome string, started time.Time) {
	CartActions.WithLabelValues(action, outcome).Inc()
	CartActionDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

// RejectCartAction records an action refused by client-side validation.
func RejectCartAction(action string) {
	CartActions.WithLabelValues(action, OutcomeRejected).Inc()
}

// ObserveCheckout records the branch a checkout submission ended in.
func ObserveCheckout(method, outcome string) {
	CheckoutOutcomes.WithLabelValues(method, outcome).Inc()
}

// ObserveCartState mirrors a cart snapshot into the cart gauges.
func ObserveCartState(items int, total float64, loading bool) {
	CartItems.Set(float64(items))
	CartTotal.Set(total)
	if loading {
		CartLoading.Set(1)
	} else {
		CartLoading.Set(0)
	}
}
