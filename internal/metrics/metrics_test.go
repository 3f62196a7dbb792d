package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCartAction(t *testing.T) {
	before := testutil.ToFloat64(CartActions.WithLabelValues("metrics_test_add", OutcomeSuccess))

	ObserveCartAction("metrics_test_add", OutcomeSuccess, time.Now().Add(-50*time.Millisecond))

	assert.Equal(t, before+1, testutil.ToFloat64(CartActions.WithLabelValues("metrics_test_add", OutcomeSuccess)))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(CartActionDuration, "storefront_cart_action_duration_seconds"), 1)
}

func TestRejectCartAction(t *testing.T) {
	RejectCartAction("metrics_test_update")
	assert.Equal(t, float64(1), testutil.ToFloat64(CartActions.WithLabelValues("metrics_test_update", OutcomeRejected)))
}

func TestObserveCheckout(t *testing.T) {
	ObserveCheckout("metrics_test_cod", CheckoutPlaced)
	ObserveCheckout("metrics_test_cod", CheckoutPlaced)
	assert.Equal(t, float64(2), testutil.ToFloat64(CheckoutOutcomes.WithLabelValues("metrics_test_cod", CheckoutPlaced)))
}

func TestObserveCartState(t *testing.T) {
	ObserveCartState(3, 45.5, true)
	assert.Equal(t, float64(3), testutil.ToFloat64(CartItems))
	assert.Equal(t, 45.5, testutil.ToFloat64(CartTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(CartLoading))

	ObserveCartState(0, 0, false)
	assert.Equal(t, float64(0), testutil.ToFloat64(CartLoading))
}
