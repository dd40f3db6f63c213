// Package calc implements the delivery settlement arithmetic: per-line
// sold quantities, sales/cash/expense totals and the net settlement.
// It is pure; all persistence and validation live in the service layer.
package calc

import (
	"github.com/shopspring/decimal"

	"mimipro/backend/internal/domain"
)

// ComputeLine derives the sold quantity and unrounded line total for one
// delivery line. Quantities are converted through the product's pieces per
// carton at computation time, so a later change to the product does not
// alter stored records. Sold never goes below zero even when returns
// exceed deliveries.
func ComputeLine(line domain.DeliveryLineInput, product domain.Product) (int, decimal.Decimal) {
	delivered := line.DeliveredCartons*product.Pcs + line.DeliveredPieces
	returned := line.ReturnedCartons*product.Pcs + line.ReturnedPieces

	sold := delivered - returned
	if sold < 0 {
		sold = 0
	}

	total := decimal.NewFromInt(int64(sold)).Mul(decimal.NewFromFloat(line.UnitPrice))
	return sold, total
}

// SalesTotal accumulates line totals over every line whose product is
// present in the lookup map. Rows with no product selected and rows whose
// product cannot be resolved contribute nothing.
func SalesTotal(lines []domain.DeliveryLineInput, products map[int64]domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.ProductID == 0 {
			continue
		}
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		_, lineTotal := ComputeLine(line, product)
		total = total.Add(lineTotal)
	}
	return total
}

// CashTotal sums note value times quantity across the counting table.
func CashTotal(counts []domain.CashCountInput) decimal.Decimal {
	total := decimal.Zero
	for _, c := range counts {
		if c.Qty <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromInt(c.Note).Mul(decimal.NewFromInt(int64(c.Qty))))
	}
	return total
}

// ExpenseTotal sums expense amounts, counting positive amounts only.
func ExpenseTotal(expenses []domain.ExpenseLine) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Amount <= 0 {
			continue
		}
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

// Totals rounds each accumulated figure to whole currency units and takes
// the net over the rounded values, so the committed record is internally
// consistent: net == sales - cash - expense exactly.
func Totals(sales, cash, expense decimal.Decimal) domain.DeliveryTotals {
	s := sales.Round(0).IntPart()
	c := cash.Round(0).IntPart()
	e := expense.Round(0).IntPart()
	return domain.DeliveryTotals{
		SalesTotal:   s,
		CashTotal:    c,
		ExpenseTotal: e,
		NetTotal:     s - c - e,
	}
}
