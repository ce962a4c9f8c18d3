package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BulkQuantity is the per-item quantity at which an order counts as bulk.
const BulkQuantity = 10

// IsBulk reports whether any item is ordered in bulk quantity.
func IsBulk(items []CheckoutItem) bool {
	for _, it := range items {
		if it.Quantity >= BulkQuantity {
			return true
		}
	}
	return false
}

func lineSubtotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}

func itemsTotal(items []CheckoutItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(lineSubtotal(it.Price, it.quantity()))
	}
	return total
}

// formatINR renders an amount in rupees with Indian digit grouping,
// e.g. 150000 -> ₹1,50,000 and 1234.5 -> ₹1,234.50.
func formatINR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole := d.Truncate(0)
	frac := d.Sub(whole)

	digits := whole.String()
	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(append(parts, tail), ",")
	}

	out := sign + "₹" + grouped
	if !frac.IsZero() {
		out += strings.TrimPrefix(frac.StringFixed(2), "0")
	}
	return out
}
