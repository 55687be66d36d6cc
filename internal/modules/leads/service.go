package leads

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/events"
)

// CacheInvalidator drops cached evaluations when a lead's financials change
type CacheInvalidator interface {
	Invalidate(leadID string) error
}

// Service coordinates lead changes: persistence, the in-memory queue state,
// cache invalidation and event emission. Every queue mutation reads and
// replaces the state inside one critical section, so concurrent writers
// cannot fold their changes into a stale snapshot; readers always see a
// complete, sorted state.
type Service struct {
	repo         *Repository
	eventManager *events.Manager
	cache        CacheInvalidator

	mu    sync.RWMutex
	state QueueState

	log zerolog.Logger
}

// NewService creates a new lead service. cache may be nil.
func NewService(repo *Repository, eventManager *events.Manager, cache CacheInvalidator, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		eventManager: eventManager,
		cache:        cache,
		state:        NewQueueState(nil, nil),
		log:          log.With().Str("service", "leads").Logger(),
	}
}

// LoadState rebuilds the queue state from the database. Called at startup and
// by the nightly rescore job.
func (s *Service) LoadState() error {
	active, err := s.repo.GetByStatuses(ActiveStatuses)
	if err != nil {
		return fmt.Errorf("failed to load queue state: %w", err)
	}

	counts, err := s.repo.CountByStatus()
	if err != nil {
		return fmt.Errorf("failed to load queue counts: %w", err)
	}

	items := make([]QueueItem, 0, len(active))
	for _, lead := range active {
		items = append(items, NewQueueItem(lead))
	}

	s.updateState(func(QueueState) QueueState {
		return NewQueueState(items, counts)
	})
	s.log.Info().Int("active_leads", len(items)).Msg("Queue state loaded")
	return nil
}

// State returns the current queue state snapshot
func (s *Service) State() QueueState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Queue returns the ordered work queue items
func (s *Service) Queue() []QueueItem {
	return s.State().Items
}

// Counts returns per-stage lead counts
func (s *Service) Counts() map[Status]int {
	return s.State().Counts
}

// GetAll returns every lead, newest first
func (s *Service) GetAll() ([]Lead, error) {
	return s.repo.GetAll()
}

// GetByID returns a lead by ID, or nil when not found
func (s *Service) GetByID(id string) (*Lead, error) {
	return s.repo.GetByID(id)
}

// Create persists a new lead, folds it into the queue and announces it
func (s *Service) Create(lead Lead) (*Lead, error) {
	created, err := s.repo.Create(lead)
	if err != nil {
		return nil, err
	}

	s.updateState(func(state QueueState) QueueState {
		return ReduceLeadCreated(state, *created)
	})

	s.emit(events.LeadCreated, *created)
	s.emitQueueChanged()
	return created, nil
}

// Update overwrites a lead's fields. Status transitions must go through
// ChangeStatus so the stage counts stay consistent.
func (s *Service) Update(lead Lead) (*Lead, error) {
	existing, err := s.repo.GetByID(lead.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	// stage moves are a separate operation
	lead.Status = existing.Status
	lead.CreatedAt = existing.CreatedAt

	updated, err := s.repo.Update(lead)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	s.invalidateCache(updated.ID)
	s.updateState(func(state QueueState) QueueState {
		return ReduceLeadUpdated(state, *updated)
	})

	s.emit(events.LeadUpdated, *updated)
	s.emitQueueChanged()
	return updated, nil
}

// ChangeStatus moves a lead to a new pipeline stage
func (s *Service) ChangeStatus(id string, status Status) (*Lead, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	oldStatus := existing.Status
	if oldStatus == status {
		return existing, nil
	}

	if err := s.repo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// deleted out from under us between the write and the re-read
		return nil, nil
	}

	s.updateState(func(state QueueState) QueueState {
		return ReduceStatusChanged(state, *updated, oldStatus)
	})

	if s.eventManager != nil {
		s.emitStatusChanged(id, oldStatus, status)
	}
	s.emitQueueChanged()
	return updated, nil
}

func (s *Service) emitStatusChanged(id string, oldStatus, status Status) {
	s.eventManager.EmitTyped("leads", &events.LeadStatusChangedData{
		LeadID:         id,
		PreviousStatus: string(oldStatus),
		NewStatus:      string(status),
	})
}

// Delete removes a lead and its cached evaluations
func (s *Service) Delete(id string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("lead not found: %s", id)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.invalidateCache(id)
	s.updateState(func(state QueueState) QueueState {
		return ReduceLeadDeleted(state, id, existing.Status)
	})

	s.emit(events.LeadDeleted, *existing)
	s.emitQueueChanged()
	return nil
}

// ApplyRentRoll overwrites a lead's rent and unit count from its rent roll
// totals. Called by the properties module when the rent roll changes.
func (s *Service) ApplyRentRoll(id string, potentialRent float64, units int) error {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if lead == nil {
		return fmt.Errorf("lead not found: %s", id)
	}

	lead.PotentialRent = potentialRent
	if units > 0 {
		lead.Units = units
	}

	updated, err := s.repo.Update(*lead)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("lead not found: %s", id)
	}

	s.invalidateCache(id)
	s.updateState(func(state QueueState) QueueState {
		return ReduceLeadUpdated(state, *updated)
	})

	if s.eventManager != nil {
		item := NewQueueItem(*updated)
		s.eventManager.EmitTyped("leads", &events.ScoreRecalculatedData{
			LeadID:    id,
			HoldScore: item.HoldScore,
			FlipScore: item.FlipScore,
		})
	}
	s.emitQueueChanged()
	return nil
}

// RefreshLead re-derives a single lead's queue entry after its property
// detail changed outside this module (rent roll edits).
func (s *Service) RefreshLead(id string) error {
	lead, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if lead == nil {
		return nil
	}

	s.invalidateCache(id)
	s.updateState(func(state QueueState) QueueState {
		return ReduceLeadUpdated(state, *lead)
	})
	s.emitQueueChanged()
	return nil
}

// updateState applies a reducer to the queue state. The read and the write
// happen under one lock so concurrent mutations never fold into a stale
// snapshot.
func (s *Service) updateState(reduce func(QueueState) QueueState) {
	s.mu.Lock()
	s.state = reduce(s.state)
	s.mu.Unlock()
}

func (s *Service) emit(eventType events.EventType, lead Lead) {
	if s.eventManager == nil {
		return
	}
	s.eventManager.EmitTyped("leads", &events.LeadChangedData{
		Kind:    eventType,
		LeadID:  lead.ID,
		Address: lead.Address,
		Status:  string(lead.Status),
	})
}

func (s *Service) emitQueueChanged() {
	if s.eventManager == nil {
		return
	}
	s.eventManager.EmitTyped("leads", &events.QueueChangedData{
		ActiveLeads: len(s.State().Items),
	})
}

func (s *Service) invalidateCache(leadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(leadID); err != nil {
		s.log.Warn().Err(err).Str("lead_id", leadID).Msg("Failed to invalidate evaluation cache")
	}
}
