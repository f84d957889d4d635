package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentStatusUnpaid, PaymentStatusUnpaid, true},
		{PaymentStatusUnpaid, PaymentStatusPaid, true},
		{PaymentStatusUnpaid, PaymentStatusFailed, true},
		{PaymentStatusUnpaid, PaymentStatusRefunded, false},
		{PaymentStatusPaid, PaymentStatusRefundProcessing, true},
		{PaymentStatusPaid, PaymentStatusUnpaid, false},
		{PaymentStatusPaid, PaymentStatusRefunded, false},
		{PaymentStatusRefundProcessing, PaymentStatusRefunded, true},
		{PaymentStatusRefundProcessing, PaymentStatusFailed, true},
		{PaymentStatusRefundProcessing, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusRefunded, true},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
		{PaymentStatusFailed, PaymentStatusUnpaid, false},
		{PaymentStatus("chargeback"), PaymentStatusPaid, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}
