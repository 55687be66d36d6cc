// Package properties manages per-lead property financial detail: monthly
// expense line items, one-time capital costs, the unit-level rent roll and
// typed listing metadata.
package properties

// Expense is a recurring monthly cost line item (utilities, HOA, trash)
type Expense struct {
	ID            int64   `json:"id"`
	LeadID        string  `json:"lead_id"`
	Label         string  `json:"label"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// CapitalCost is a one-time cost item (roof, furnace, sewer line)
type CapitalCost struct {
	ID     int64   `json:"id"`
	LeadID string  `json:"lead_id"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Unit is one rentable unit in the rent roll
type Unit struct {
	ID         int64   `json:"id"`
	LeadID     string  `json:"lead_id"`
	Label      string  `json:"label"`
	Beds       int     `json:"beds"`
	Baths      float64 `json:"baths"`
	MarketRent float64 `json:"market_rent"`
}

// Property is the full financial detail view for a lead
type Property struct {
	LeadID       string              `json:"lead_id"`
	Expenses     []Expense           `json:"expenses"`
	CapitalCosts []CapitalCost       `json:"capital_costs"`
	Units        []Unit              `json:"units"`
	Metadata     map[string]Metadata `json:"metadata"`
}

// TotalMonthlyExpenses sums the recurring expense line items
func (p *Property) TotalMonthlyExpenses() float64 {
	var total float64
	for _, e := range p.Expenses {
		total += e.MonthlyAmount
	}
	return total
}

// TotalCapitalCosts sums the one-time cost items
func (p *Property) TotalCapitalCosts() float64 {
	var total float64
	for _, c := range p.CapitalCosts {
		total += c.Amount
	}
	return total
}

// RentRollTotal sums market rent across units. This feeds the lead's
// potential_rent when the rent roll is the source of truth.
func (p *Property) RentRollTotal() float64 {
	var total float64
	for _, u := range p.Units {
		total += u.MarketRent
	}
	return total
}
