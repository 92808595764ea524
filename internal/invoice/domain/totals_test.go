package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeTotals(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		total string
	}{
		{name: "number", raw: `{"total": 1500.5}`, total: "1500.5"},
		{name: "numeric string", raw: `{"total": " 320.25 "}`, total: "320.25"},
		{name: "missing", raw: `{"subTotal": 10}`, total: "0"},
		{name: "null", raw: `{"total": null}`, total: "0"},
		{name: "garbage string", raw: `{"total": "abc"}`, total: "0"},
		{name: "boolean", raw: `{"total": true}`, total: "0"},
		{name: "object", raw: `{"total": {"amount": 5}}`, total: "0"},
		{name: "not an object", raw: `[1,2,3]`, total: "0"},
		{name: "invalid json", raw: `{"total":`, total: "0"},
		{name: "empty", raw: ``, total: "0"},
		{name: "negative number", raw: `{"total": -80}`, total: "0"},
		{name: "negative string", raw: `{"total": "-12.5"}`, total: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := DecodeTotals([]byte(tc.raw))
			assert.Equal(t, tc.total, totals.Total.String())
		})
	}
}

func TestDecodeTotalsReadsAllFields(t *testing.T) {
	totals := DecodeTotals([]byte(`{"total":"900","subTotal":1000,"discount":"100","paymentMode":" upi "}`))

	assert.Equal(t, "900", totals.Total.String())
	assert.Equal(t, "1000", totals.SubTotal.String())
	assert.Equal(t, "100", totals.Discount.String())
	assert.Equal(t, "upi", totals.PaymentMode)
}

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, NormalizePaymentStatus("  PAID "))
	assert.Equal(t, PaymentStatusUnpaid, NormalizePaymentStatus("Unpaid"))
	assert.Equal(t, PaymentStatusPartial, NormalizePaymentStatus("partial"))
	assert.Equal(t, PaymentStatus("refunded"), NormalizePaymentStatus("Refunded"))
}
