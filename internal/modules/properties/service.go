package properties

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/events"
)

// LeadSync pushes rent roll totals back onto the lead so queue scores follow
// rent roll edits. Implemented by the leads service.
type LeadSync interface {
	ApplyRentRoll(leadID string, potentialRent float64, units int) error
}

// Service coordinates property detail changes and keeps the owning lead's
// financial snapshot in sync with the rent roll.
type Service struct {
	repo         *Repository
	leadSync     LeadSync
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new property service. leadSync may be nil in tests.
func NewService(repo *Repository, leadSync LeadSync, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		leadSync:     leadSync,
		eventManager: eventManager,
		log:          log.With().Str("service", "properties").Logger(),
	}
}

// Get returns the full property detail for a lead
func (s *Service) Get(leadID string) (*Property, error) {
	return s.repo.GetByLeadID(leadID)
}

// AddExpense adds a monthly expense line item
func (s *Service) AddExpense(e Expense) (*Expense, error) {
	added, err := s.repo.AddExpense(e)
	if err != nil {
		return nil, err
	}
	s.emitUpdated(e.LeadID)
	return added, nil
}

// DeleteExpense removes a monthly expense line item
func (s *Service) DeleteExpense(leadID string, id int64) error {
	if err := s.repo.DeleteExpense(id); err != nil {
		return err
	}
	s.emitUpdated(leadID)
	return nil
}

// AddCapitalCost adds a one-time cost item
func (s *Service) AddCapitalCost(c CapitalCost) (*CapitalCost, error) {
	added, err := s.repo.AddCapitalCost(c)
	if err != nil {
		return nil, err
	}
	s.emitUpdated(c.LeadID)
	return added, nil
}

// DeleteCapitalCost removes a one-time cost item
func (s *Service) DeleteCapitalCost(leadID string, id int64) error {
	if err := s.repo.DeleteCapitalCost(id); err != nil {
		return err
	}
	s.emitUpdated(leadID)
	return nil
}

// AddUnit adds a rent roll unit and pushes the new totals onto the lead
func (s *Service) AddUnit(u Unit) (*Unit, error) {
	added, err := s.repo.AddUnit(u)
	if err != nil {
		return nil, err
	}
	if err := s.syncRentRoll(u.LeadID); err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateUnit overwrites a rent roll unit and pushes the new totals onto the lead
func (s *Service) UpdateUnit(u Unit) error {
	if err := s.repo.UpdateUnit(u); err != nil {
		return err
	}
	return s.syncRentRoll(u.LeadID)
}

// DeleteUnit removes a rent roll unit and pushes the new totals onto the lead
func (s *Service) DeleteUnit(leadID string, id int64) error {
	if err := s.repo.DeleteUnit(id); err != nil {
		return err
	}
	return s.syncRentRoll(leadID)
}

// IngestMetadata resolves raw scraped metadata into typed entries and stores
// them. The typing happens exactly once, here.
func (s *Service) IngestMetadata(leadID string, raw map[string]interface{}) (map[string]Metadata, error) {
	resolved := ResolveMetadataMap(raw)
	if err := s.repo.SetMetadata(leadID, resolved); err != nil {
		return nil, err
	}
	s.emitUpdated(leadID)
	return resolved, nil
}

// syncRentRoll recomputes rent roll totals and applies them to the lead
func (s *Service) syncRentRoll(leadID string) error {
	units, err := s.repo.GetUnits(leadID)
	if err != nil {
		return err
	}

	var totalRent float64
	for _, u := range units {
		totalRent += u.MarketRent
	}

	if s.leadSync != nil {
		if err := s.leadSync.ApplyRentRoll(leadID, totalRent, len(units)); err != nil {
			return fmt.Errorf("failed to sync rent roll to lead %s: %w", leadID, err)
		}
	}

	if s.eventManager != nil {
		s.eventManager.EmitTyped("properties", &events.PropertyUpdatedData{
			LeadID:        leadID,
			PotentialRent: totalRent,
			Units:         len(units),
		})
	}
	return nil
}

func (s *Service) emitUpdated(leadID string) {
	if s.eventManager == nil {
		return
	}
	s.eventManager.Emit(events.PropertyUpdated, "properties", map[string]interface{}{
		"lead_id": leadID,
	})
}
