// Package aggregate folds invoice rows into window totals and compares
// windows against each other.
package aggregate

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/clinicops/internal/invoice/domain"
	"github.com/smallbiznis/clinicops/internal/insights/domain"
)

var hundred = decimal.NewFromInt(100)

// Accumulate folds rows into an Aggregate. Partial payments count toward
// invoiceCount and grossRevenue only.
func Accumulate(rows []invoicedomain.Row) domain.Aggregate {
	agg := domain.Aggregate{
		GrossRevenue:    decimal.Zero,
		PaidRevenue:     decimal.Zero,
		AvgInvoiceValue: decimal.Zero,
	}

	for _, row := range rows {
		total := row.Totals.Total
		agg.InvoiceCount++
		agg.GrossRevenue = agg.GrossRevenue.Add(total)

		switch invoicedomain.NormalizePaymentStatus(string(row.PaymentStatus)) {
		case invoicedomain.PaymentStatusPaid:
			agg.PaidRevenue = agg.PaidRevenue.Add(total)
		case invoicedomain.PaymentStatusUnpaid:
			agg.UnpaidCount++
		}
	}

	if agg.InvoiceCount > 0 {
		agg.AvgInvoiceValue = agg.GrossRevenue.Div(decimal.NewFromInt(agg.InvoiceCount))
	}
	return agg
}

// Decorate compares every field of current against previous.
func Decorate(current, previous domain.Aggregate) domain.DecoratedAggregate {
	return domain.DecoratedAggregate{
		InvoiceCount:    DecorateMetric(decimal.NewFromInt(current.InvoiceCount), decimal.NewFromInt(previous.InvoiceCount)),
		GrossRevenue:    DecorateMetric(current.GrossRevenue, previous.GrossRevenue),
		PaidRevenue:     DecorateMetric(current.PaidRevenue, previous.PaidRevenue),
		UnpaidCount:     DecorateMetric(decimal.NewFromInt(current.UnpaidCount), decimal.NewFromInt(previous.UnpaidCount)),
		AvgInvoiceValue: DecorateMetric(current.AvgInvoiceValue, previous.AvgInvoiceValue),
	}
}

func DecorateMetric(current, previous decimal.Decimal) domain.DecoratedMetric {
	return domain.DecoratedMetric{
		Value:    current.InexactFloat64(),
		Delta:    current.Sub(previous).InexactFloat64(),
		DeltaPct: PercentChange(current, previous).InexactFloat64(),
	}
}

// PercentChange is 0 when both values are zero and 100 when only previous
// is zero.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred)
}
