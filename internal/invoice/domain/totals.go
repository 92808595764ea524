package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals is the monetary summary stored alongside an invoice. Missing,
// non-numeric or negative amounts decode as zero.
type Totals struct {
	Total       decimal.Decimal `json:"total"`
	SubTotal    decimal.Decimal `json:"subTotal"`
	Discount    decimal.Decimal `json:"discount"`
	PaymentMode string          `json:"paymentMode,omitempty"`
}

// DecodeTotals never fails; malformed payloads yield zero Totals.
func DecodeTotals(raw []byte) Totals {
	var t Totals
	_ = t.UnmarshalJSON(raw)
	return t
}

func (t *Totals) UnmarshalJSON(raw []byte) error {
	*t = Totals{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	t.Total = decodeAmount(fields["total"])
	t.SubTotal = decodeAmount(fields["subTotal"])
	t.Discount = decodeAmount(fields["discount"])

	var mode string
	if err := json.Unmarshal(fields["paymentMode"], &mode); err == nil {
		t.PaymentMode = strings.TrimSpace(mode)
	}
	return nil
}

// decodeAmount accepts JSON numbers and numeric strings. Amounts are never
// negative.
func decodeAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return decimal.Zero
	}

	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}
