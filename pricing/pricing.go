// Package pricing holds the buy-one-get-one-free rules used when an order is
// priced.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Clock supplies the moment an order is created.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Policy decides whether a moment falls on the weekly promotion day.
type Policy struct {
	PromotionDay time.Weekday
	Location     *time.Location
}

// DefaultPolicy promotes on Sundays in the server's local zone.
func DefaultPolicy() Policy {
	return Policy{PromotionDay: time.Sunday, Location: time.Local}
}

// NewPolicy builds a policy from configuration. An empty zone means local time.
func NewPolicy(day, zone string) (Policy, error) {
	wd, err := ParseWeekday(day)
	if err != nil {
		return Policy{}, err
	}
	loc := time.Local
	if zone != "" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return Policy{}, fmt.Errorf("promotion time zone %q: %w", zone, err)
		}
	}
	return Policy{PromotionDay: wd, Location: loc}, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func (p Policy) IsPromotionDay(t time.Time) bool {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Weekday() == p.PromotionDay
}

// PaidUnits is the number of units charged for quantity. On a promotion day
// every second unit is free, so an odd quantity pays for the extra one.
func PaidUnits(quantity int, promotional bool) int {
	if quantity <= 0 {
		return 0
	}
	if promotional {
		return (quantity + 1) / 2
	}
	return quantity
}

// LineQuote is the priced form of one order line.
type LineQuote struct {
	UnitPrice   decimal.Decimal
	Quantity    int
	PaidUnits   int
	ItemCost    decimal.Decimal
	Promotional bool
}

// Quote prices quantity units at unitPrice. The promotion applies only when
// the product is eligible and the order falls on the promotion day.
func Quote(unitPrice decimal.Decimal, quantity int, eligible, promotionDay bool) LineQuote {
	promo := eligible && promotionDay
	paid := PaidUnits(quantity, promo)
	return LineQuote{
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		PaidUnits:   paid,
		ItemCost:    unitPrice.Mul(decimal.NewFromInt(int64(paid))),
		Promotional: promo,
	}
}

// Total sums the item costs of quotes.
func Total(quotes []LineQuote) decimal.Decimal {
	sum := decimal.Zero
	for _, q := range quotes {
		sum = sum.Add(q.ItemCost)
	}
	return sum
}
