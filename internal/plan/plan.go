package plan

// Plan is one entry of the static plan catalog. Prices are in minor units.
type Plan struct {
	ID          string
	DisplayName string
	Price       int64
	CreditGrant int64
}

var catalog = map[string]Plan{
	"plan_starter_monthly": {
		ID:          "plan_starter_monthly",
		DisplayName: "Starter (Monthly)",
		Price:       19900,
		CreditGrant: 100,
	},
	"plan_pro_monthly": {
		ID:          "plan_pro_monthly",
		DisplayName: "Pro (Monthly)",
		Price:       49900,
		CreditGrant: 500,
	},
	"plan_pro_yearly": {
		ID:          "plan_pro_yearly",
		DisplayName: "Pro (Yearly)",
		Price:       499900,
		CreditGrant: 6000,
	},
}

// Lookup returns the catalog entry for planID.
func Lookup(planID string) (Plan, bool) {
	p, ok := catalog[planID]
	return p, ok
}

// Credits returns the credit grant for planID. Unknown plans grant 0;
// callers treat that as a no-op, not an error.
func Credits(planID string) int64 {
	return catalog[planID].CreditGrant
}
