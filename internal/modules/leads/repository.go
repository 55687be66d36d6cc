package leads

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// leadsColumns is the column list for the leads table. Kept explicit so a
// schema change breaks loudly instead of silently shifting scan targets.
const leadsColumns = `id, address, city, state, zip, source, status, priority, notes,
	offer_price, rehab_costs, arv, potential_rent, units, created_at, updated_at`

// Repository handles lead persistence in leads.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new lead repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "leads").Logger(),
	}
}

// Create inserts a new lead. A missing ID gets a fresh UUID and a missing
// status defaults to new. Returns the stored lead.
func (r *Repository) Create(lead Lead) (*Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if lead.Units <= 0 {
		lead.Units = 1
	}
	if err := lead.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
		INSERT INTO leads
		(id, address, city, state, zip, source, status, priority, notes,
		 offer_price, rehab_costs, arv, potential_rent, units, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		lead.ID,
		strings.TrimSpace(lead.Address),
		lead.City, lead.State, lead.Zip, lead.Source,
		string(lead.Status), lead.Priority, lead.Notes,
		lead.OfferPrice, lead.RehabCosts, lead.ARV, lead.PotentialRent, lead.Units,
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	r.log.Info().
		Str("lead_id", lead.ID).
		Str("address", lead.Address).
		Msg("Lead created")

	return &lead, nil
}

// GetByID retrieves a lead by ID. Returns nil when not found.
func (r *Repository) GetByID(id string) (*Lead, error) {
	row := r.db.QueryRow("SELECT "+leadsColumns+" FROM leads WHERE id = ?", id)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead %s: %w", id, err)
	}

	return &lead, nil
}

// GetAll retrieves every lead, newest first
func (r *Repository) GetAll() ([]Lead, error) {
	rows, err := r.db.Query("SELECT " + leadsColumns + " FROM leads ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// GetByStatuses retrieves leads in any of the given stages
func (r *Repository) GetByStatuses(statuses []Status) ([]Lead, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}

	query := "SELECT " + leadsColumns + " FROM leads WHERE status IN (" + placeholders + ") ORDER BY created_at DESC"
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads by status: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

// Update overwrites a lead's mutable fields. Returns the stored lead, or nil
// when the ID does not exist.
func (r *Repository) Update(lead Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	lead.UpdatedAt = time.Now()

	query := `
		UPDATE leads
		SET address = ?, city = ?, state = ?, zip = ?, source = ?,
		    status = ?, priority = ?, notes = ?,
		    offer_price = ?, rehab_costs = ?, arv = ?, potential_rent = ?, units = ?,
		    updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		strings.TrimSpace(lead.Address),
		lead.City, lead.State, lead.Zip, lead.Source,
		string(lead.Status), lead.Priority, lead.Notes,
		lead.OfferPrice, lead.RehabCosts, lead.ARV, lead.PotentialRent, lead.Units,
		lead.UpdatedAt.Unix(),
		lead.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead %s: %w", lead.ID, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return nil, nil
	}

	return r.GetByID(lead.ID)
}

// UpdateStatus moves a lead to a new pipeline stage
func (r *Repository) UpdateStatus(id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status: %s", status)
	}

	result, err := r.db.Exec(
		"UPDATE leads SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status for lead %s: %w", id, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("lead not found: %s", id)
	}

	r.log.Info().
		Str("lead_id", id).
		Str("status", string(status)).
		Msg("Lead status updated")

	return nil
}

// Delete removes a lead. Property detail rows cascade via foreign keys.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete lead %s: %w", id, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("lead not found: %s", id)
	}

	r.log.Info().Str("lead_id", id).Msg("Lead deleted")
	return nil
}

// CountByStatus returns per-stage lead counts for the dashboard badges
func (r *Repository) CountByStatus() (map[Status]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM leads GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[Status(status)] = count
	}

	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (Lead, error) {
	var lead Lead
	var status string
	var createdAt, updatedAt int64

	err := row.Scan(
		&lead.ID, &lead.Address, &lead.City, &lead.State, &lead.Zip,
		&lead.Source, &status, &lead.Priority, &lead.Notes,
		&lead.OfferPrice, &lead.RehabCosts, &lead.ARV, &lead.PotentialRent, &lead.Units,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return Lead{}, err
	}

	lead.Status = Status(status)
	lead.CreatedAt = time.Unix(createdAt, 0)
	lead.UpdatedAt = time.Unix(updatedAt, 0)
	return lead, nil
}

func collectLeads(rows *sql.Rows) ([]Lead, error) {
	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
