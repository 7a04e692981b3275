package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/storekeeper/internal/errs"
	"github.com/and161185/storekeeper/internal/model"
)

// View selects the period a sales summary covers.
type View string

const (
	ViewAll   View = "all"
	ViewDate  View = "date"
	ViewWeek  View = "week"
	ViewMonth View = "month"
	ViewYear  View = "year"
)

// ParseView accepts a view name; empty means all.
func ParseView(v string) (View, error) {
	switch View(v) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewDate, ViewWeek, ViewMonth, ViewYear:
		return View(v), nil
	}
	return "", errs.Validationf("unknown view %q", v)
}

// Window returns the half-open [from, to) period of view around ref in loc.
// Weeks start on Monday. ViewAll yields zero times.
func Window(view View, ref time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	r := ref.In(loc)
	y, m, d := r.Date()
	switch view {
	case ViewDate:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		to = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	case ViewWeek:
		wd := (int(r.Weekday()) + 6) % 7
		from = time.Date(y, m, d-wd, 0, 0, 0, 0, loc)
		to = time.Date(y, m, d-wd+7, 0, 0, 0, 0, loc)
	case ViewMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = time.Date(y, m+1, 1, 0, 0, 0, 0, loc)
	case ViewYear:
		from = time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		to = time.Date(y+1, 1, 1, 0, 0, 0, 0, loc)
	}
	return from, to
}

func inWindow(t, from, to time.Time) bool {
	if from.IsZero() {
		return true
	}
	return !t.Before(from) && t.Before(to)
}

// FilterSales returns sales dated inside the view around ref.
func FilterSales(sales []model.Sale, view View, ref time.Time, loc *time.Location) []model.Sale {
	from, to := Window(view, ref, loc)
	out := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if inWindow(s.Date, from, to) {
			out = append(out, s)
		}
	}
	return out
}

// Summary aggregates sales over one period.
type Summary struct {
	View     View
	From     time.Time
	To       time.Time
	Count    int
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
	Profit   decimal.Decimal
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d sales, revenue %s, profit %s", s.View, s.Count, s.Revenue, s.Profit)
}

// Summarize totals the sales of view around ref.
func Summarize(sales []model.Sale, view View, ref time.Time, loc *time.Location) Summary {
	from, to := Window(view, ref, loc)
	sum := Summary{View: view, From: from, To: to, Quantity: decimal.Zero, Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, s := range sales {
		if !inWindow(s.Date, from, to) {
			continue
		}
		sum.Count++
		sum.Quantity = sum.Quantity.Add(s.Quantity)
		sum.Revenue = sum.Revenue.Add(s.Revenue())
		sum.Profit = sum.Profit.Add(s.TotalProfit())
	}
	return sum
}

// Dashboard is the overview shown after login.
type Dashboard struct {
	ProductCount int
	TotalStock   decimal.Decimal
	Today        Summary
	Month        Summary
	LowStock     []model.Product
}

// BuildDashboard computes the overview at now in loc.
func BuildDashboard(s *model.Snapshot, now time.Time, loc *time.Location, lowStock decimal.Decimal) Dashboard {
	d := Dashboard{
		ProductCount: len(s.Products),
		TotalStock:   decimal.Zero,
		Today:        Summarize(s.Sales, ViewDate, now, loc),
		Month:        Summarize(s.Sales, ViewMonth, now, loc),
		LowStock:     LowStock(s.Products, lowStock),
	}
	for _, p := range s.Products {
		d.TotalStock = d.TotalStock.Add(p.Stock)
	}
	return d
}
