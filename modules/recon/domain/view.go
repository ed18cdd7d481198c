package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fieldops/salesrecon/modules/roster/domain/aggregates/staff"
)

// ViewKey identifies one person across the three sources.
type ViewKey struct {
	Role staff.Role
	Name string
}

// PersonView is one source's summary of a person. It is recomputed on every
// reconciliation run and never persisted.
type PersonView struct {
	Name       string
	Code       string
	Role       staff.Role
	ParentName string
	Status     staff.Status

	// MonthsObserved is populated by the ledger extractor only.
	MonthsObserved map[int]struct{}

	// PolicyCount and TotalAmount aggregate ledger evidence; zero for the
	// other sources.
	PolicyCount int
	TotalAmount decimal.Decimal
}

func NewPersonView(role staff.Role, name string) *PersonView {
	return &PersonView{
		Name:           name,
		Role:           role,
		Status:         staff.StatusActive,
		MonthsObserved: make(map[int]struct{}),
		TotalAmount:    decimal.Zero,
	}
}

func (v *PersonView) Key() ViewKey {
	return ViewKey{Role: v.Role, Name: v.Name}
}

func (v *PersonView) ObserveMonth(month int) {
	if month < 1 || month > 12 {
		return
	}
	if v.MonthsObserved == nil {
		v.MonthsObserved = make(map[int]struct{})
	}
	v.MonthsObserved[month] = struct{}{}
}

// FirstMonth returns the earliest observed month, or 0 when none were.
func (v *PersonView) FirstMonth() int {
	first := 0
	for m := range v.MonthsObserved {
		if first == 0 || m < first {
			first = m
		}
	}
	return first
}

// LastMonth returns the latest observed month, or 0 when none were.
func (v *PersonView) LastMonth() int {
	last := 0
	for m := range v.MonthsObserved {
		if m > last {
			last = m
		}
	}
	return last
}

// Months returns the observed months in ascending order.
func (v *PersonView) Months() []int {
	out := make([]int, 0, len(v.MonthsObserved))
	for m := range v.MonthsObserved {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}
