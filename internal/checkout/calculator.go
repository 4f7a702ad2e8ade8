package checkout

import (
	"pos-terminal/internal/model"

	"github.com/shopspring/decimal"
)

// Philippine VAT and the legally mandated senior/PWD discount rate.
var (
	vatRate        = decimal.NewFromFloat(0.12)
	regulatoryRate = decimal.NewFromFloat(0.20)
	hundred        = decimal.NewFromInt(100)
)

// DiscountKind tags a DiscountSelection.
type DiscountKind int

const (
	DiscountNone DiscountKind = iota
	DiscountPercent
	DiscountAmount
	DiscountSenior
	DiscountPWD
)

// DiscountSelection is the discount applied to a whole cart. It is a tagged
// union built only through the constructors below, so a manual discount and
// a regulatory (senior/PWD) discount can never be active at the same time.
type DiscountSelection struct {
	kind  DiscountKind
	value decimal.Decimal
}

// NoDiscount selects no discount at all.
func NoDiscount() DiscountSelection {
	return DiscountSelection{kind: DiscountNone}
}

// PercentDiscount applies percent (0..100) to each line's extended price.
func PercentDiscount(percent decimal.Decimal) DiscountSelection {
	return DiscountSelection{kind: DiscountPercent, value: percent}
}

// AmountDiscount applies a fixed amount prorated across lines by quantity
// share.
func AmountDiscount(amount decimal.Decimal) DiscountSelection {
	return DiscountSelection{kind: DiscountAmount, value: amount}
}

// SeniorDiscount selects the senior-citizen regulatory discount.
func SeniorDiscount() DiscountSelection {
	return DiscountSelection{kind: DiscountSenior}
}

// PWDDiscount selects the persons-with-disability regulatory discount.
func PWDDiscount() DiscountSelection {
	return DiscountSelection{kind: DiscountPWD}
}

// Kind returns the selection's tag.
func (s DiscountSelection) Kind() DiscountKind {
	return s.kind
}

// Value returns the manual discount value; zero for regulatory and none.
func (s DiscountSelection) Value() decimal.Decimal {
	return s.value
}

// Regulatory reports whether the selection is senior or PWD. Regulatory
// lines are tax-exempt.
func (s DiscountSelection) Regulatory() bool {
	return s.kind == DiscountSenior || s.kind == DiscountPWD
}

// TaxPercentage returns the tax rate the backend expects on payloads for
// this selection: zero for regulatory orders, VAT otherwise.
func TaxPercentage(s DiscountSelection) decimal.Decimal {
	if s.Regulatory() {
		return decimal.Zero
	}
	return vatRate
}

// LineTotals is one line's share of the breakdown.
type LineTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// TotalsBreakdown is the totals view of a cart. Aggregates are always sums
// of the per-line values, never recomputed from aggregate inputs, so the
// line and aggregate views cannot drift apart.
type TotalsBreakdown struct {
	PerLine  []LineTotals    `json:"per_line"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate derives the totals breakdown for a cart. It is pure and
// deterministic; an empty cart yields all-zero totals.
//
// Regulatory mode: each line is tax-exempt and discounted a flat 20% of the
// extended price. Standard mode: the manual discount comes off first, then
// VAT is applied to the discounted base and added on top.
func Calculate(lines []model.CartLine, sel DiscountSelection) TotalsBreakdown {
	breakdown := TotalsBreakdown{
		PerLine:  make([]LineTotals, 0, len(lines)),
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}

	totalQuantity := int64(0)
	for _, line := range lines {
		totalQuantity += int64(line.Quantity)
	}

	for _, line := range lines {
		extended := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		var lt LineTotals
		if sel.Regulatory() {
			discount := extended.Mul(regulatoryRate)
			lt = LineTotals{
				Subtotal: extended,
				Tax:      decimal.Zero,
				Discount: discount,
				Total:    extended.Sub(discount),
			}
		} else {
			var discount decimal.Decimal
			switch sel.kind {
			case DiscountPercent:
				discount = extended.Mul(sel.value).Div(hundred)
			case DiscountAmount:
				if totalQuantity > 0 {
					discount = sel.value.
						Div(decimal.NewFromInt(totalQuantity)).
						Mul(decimal.NewFromInt(int64(line.Quantity)))
				}
			default:
				discount = decimal.Zero
			}

			net := extended.Sub(discount)
			tax := net.Mul(vatRate)
			lt = LineTotals{
				Subtotal: extended,
				Tax:      tax,
				Discount: discount,
				Total:    net.Add(tax),
			}
		}

		breakdown.PerLine = append(breakdown.PerLine, lt)
		breakdown.Subtotal = breakdown.Subtotal.Add(lt.Subtotal)
		breakdown.Tax = breakdown.Tax.Add(lt.Tax)
		breakdown.Discount = breakdown.Discount.Add(lt.Discount)
		breakdown.Total = breakdown.Total.Add(lt.Total)
	}

	return breakdown
}
