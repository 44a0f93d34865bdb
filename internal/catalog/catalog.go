// Package catalog holds the static subscription plan table.
package catalog

// Plan describes a purchasable subscription.
type Plan struct {
	ID     string
	Name   string
	Amount int
	// ComingSoon plans are shown in the picker but cannot be purchased yet.
	ComingSoon bool
}

// Selector values double as callback keys in the plan picker.
const (
	Plan1Month  = "plan_1month_20"
	Plan3Months = "plan_3months_55"
	Plan6Months = "plan_6months_100"
)

var plans = []Plan{
	{ID: Plan1Month, Name: "1 Month YouTube Premium", Amount: 20},
	{ID: Plan3Months, Name: "3 Months YouTube Premium", Amount: 55},
	{ID: Plan6Months, Name: "6 Months YouTube Premium", Amount: 100, ComingSoon: true},
}

// Lookup resolves a plan selector. Coming-soon plans resolve with ok=true;
// callers decide whether to allow them.
func Lookup(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// All returns every plan in display order.
func All() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Purchasable reports whether the plan can actually be bought.
func Purchasable(id string) bool {
	p, ok := Lookup(id)
	return ok && !p.ComingSoon
}
