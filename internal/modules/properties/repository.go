package properties

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/database"
)

// Repository handles property detail persistence in leads.db.
// All rows hang off a lead and cascade on lead deletion.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new property repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "properties").Logger(),
	}
}

// GetByLeadID assembles the full property detail for a lead. A lead with no
// detail rows yet gets an empty (not nil) property.
func (r *Repository) GetByLeadID(leadID string) (*Property, error) {
	expenses, err := r.GetExpenses(leadID)
	if err != nil {
		return nil, err
	}
	capitalCosts, err := r.GetCapitalCosts(leadID)
	if err != nil {
		return nil, err
	}
	units, err := r.GetUnits(leadID)
	if err != nil {
		return nil, err
	}
	metadata, err := r.GetMetadata(leadID)
	if err != nil {
		return nil, err
	}

	return &Property{
		LeadID:       leadID,
		Expenses:     expenses,
		CapitalCosts: capitalCosts,
		Units:        units,
		Metadata:     metadata,
	}, nil
}

// GetExpenses returns a lead's monthly expense line items
func (r *Repository) GetExpenses(leadID string) ([]Expense, error) {
	rows, err := r.db.Query(
		"SELECT id, lead_id, label, monthly_amount FROM property_expenses WHERE lead_id = ? ORDER BY id",
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses for lead %s: %w", leadID, err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Label, &e.MonthlyAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// AddExpense inserts an expense line item and returns it with its ID
func (r *Repository) AddExpense(e Expense) (*Expense, error) {
	result, err := r.db.Exec(
		"INSERT INTO property_expenses (lead_id, label, monthly_amount) VALUES (?, ?, ?)",
		e.LeadID, e.Label, e.MonthlyAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add expense: %w", err)
	}
	e.ID, _ = result.LastInsertId()
	return &e, nil
}

// DeleteExpense removes an expense line item
func (r *Repository) DeleteExpense(id int64) error {
	return r.deleteByID("property_expenses", id)
}

// GetCapitalCosts returns a lead's one-time cost items
func (r *Repository) GetCapitalCosts(leadID string) ([]CapitalCost, error) {
	rows, err := r.db.Query(
		"SELECT id, lead_id, label, amount FROM property_capital_costs WHERE lead_id = ? ORDER BY id",
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get capital costs for lead %s: %w", leadID, err)
	}
	defer rows.Close()

	costs := []CapitalCost{}
	for rows.Next() {
		var c CapitalCost
		if err := rows.Scan(&c.ID, &c.LeadID, &c.Label, &c.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan capital cost: %w", err)
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

// AddCapitalCost inserts a one-time cost item and returns it with its ID
func (r *Repository) AddCapitalCost(c CapitalCost) (*CapitalCost, error) {
	result, err := r.db.Exec(
		"INSERT INTO property_capital_costs (lead_id, label, amount) VALUES (?, ?, ?)",
		c.LeadID, c.Label, c.Amount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add capital cost: %w", err)
	}
	c.ID, _ = result.LastInsertId()
	return &c, nil
}

// DeleteCapitalCost removes a one-time cost item
func (r *Repository) DeleteCapitalCost(id int64) error {
	return r.deleteByID("property_capital_costs", id)
}

// GetUnits returns a lead's rent roll
func (r *Repository) GetUnits(leadID string) ([]Unit, error) {
	rows, err := r.db.Query(
		"SELECT id, lead_id, label, beds, baths, market_rent FROM property_units WHERE lead_id = ? ORDER BY id",
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get units for lead %s: %w", leadID, err)
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.LeadID, &u.Label, &u.Beds, &u.Baths, &u.MarketRent); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// AddUnit inserts a rent roll unit and returns it with its ID
func (r *Repository) AddUnit(u Unit) (*Unit, error) {
	result, err := r.db.Exec(
		"INSERT INTO property_units (lead_id, label, beds, baths, market_rent) VALUES (?, ?, ?, ?, ?)",
		u.LeadID, u.Label, u.Beds, u.Baths, u.MarketRent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add unit: %w", err)
	}
	u.ID, _ = result.LastInsertId()
	return &u, nil
}

// UpdateUnit overwrites a rent roll unit
func (r *Repository) UpdateUnit(u Unit) error {
	result, err := r.db.Exec(
		"UPDATE property_units SET label = ?, beds = ?, baths = ?, market_rent = ? WHERE id = ?",
		u.Label, u.Beds, u.Baths, u.MarketRent, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit %d: %w", u.ID, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("unit not found: %d", u.ID)
	}
	return nil
}

// DeleteUnit removes a rent roll unit
func (r *Repository) DeleteUnit(id int64) error {
	return r.deleteByID("property_units", id)
}

// GetMetadata returns a lead's typed listing metadata
func (r *Repository) GetMetadata(leadID string) (map[string]Metadata, error) {
	rows, err := r.db.Query(
		"SELECT key, kind, number_value, text_value FROM property_metadata WHERE lead_id = ?",
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata for lead %s: %w", leadID, err)
	}
	defer rows.Close()

	metadata := map[string]Metadata{}
	for rows.Next() {
		var key, kind string
		var number sql.NullFloat64
		var text sql.NullString
		if err := rows.Scan(&key, &kind, &number, &text); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		metadata[key] = Metadata{
			Kind:   MetadataKind(kind),
			Number: number.Float64,
			Text:   text.String,
		}
	}
	return metadata, rows.Err()
}

// SetMetadata replaces a lead's metadata with the given typed entries.
// Clear and re-insert run in one transaction so a failed write never leaves
// the lead with half its metadata.
func (r *Repository) SetMetadata(leadID string, metadata map[string]Metadata) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM property_metadata WHERE lead_id = ?", leadID); err != nil {
			return fmt.Errorf("failed to clear metadata for lead %s: %w", leadID, err)
		}

		for key, m := range metadata {
			var number interface{}
			var text interface{}
			if m.Kind == KindText {
				text = m.Text
			} else {
				number = m.Number
			}

			_, err := tx.Exec(
				"INSERT INTO property_metadata (lead_id, key, kind, number_value, text_value) VALUES (?, ?, ?, ?, ?)",
				leadID, key, string(m.Kind), number, text,
			)
			if err != nil {
				return fmt.Errorf("failed to insert metadata %s: %w", key, err)
			}
		}
		return nil
	})
}

func (r *Repository) deleteByID(table string, id int64) error {
	result, err := r.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("row not found in %s: %d", table, id)
	}
	return nil
}
