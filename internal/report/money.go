package report

import "github.com/shopspring/decimal"

// Money accumulates currency amounts without float drift
type Money struct {
	d decimal.Decimal
}

func (m *Money) Add(v float64) {
	m.d = m.d.Add(decimal.NewFromFloat(v))
}

func (m *Money) AddLine(price float64, qty int) {
	m.d = m.d.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
}

func (m Money) Float() float64 {
	return m.d.Round(2).InexactFloat64()
}

// Average returns the total divided by n, or 0 when n is 0
func (m Money) Average(n int) float64 {
	if n == 0 {
		return 0
	}
	return m.d.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// Percentage returns part/total*100 rounded to two places, 0 when total is 0
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(total)).Mul(decimal.NewFromInt(100))
	return p.Round(2).InexactFloat64()
}

// Growth is (current-previous)/previous*100, or 0 when previous is 0
func Growth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return Percentage(current-previous, previous)
}
