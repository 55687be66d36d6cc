// Package leads implements lead tracking: CRUD over the deal pipeline and
// the prioritized work queue the dashboard's main table renders.
package leads

import (
	"fmt"
	"time"

	"github.com/avramidis/dealscout/internal/modules/scoring"
)

// Status is a lead's pipeline stage
type Status string

const (
	StatusNew           Status = "new"
	StatusReviewing     Status = "reviewing"
	StatusOfferMade     Status = "offer_made"
	StatusUnderContract Status = "under_contract"
	StatusClosed        Status = "closed"
	StatusDead          Status = "dead"
)

// ActiveStatuses are the stages that keep a lead in the work queue.
// Closed and dead leads stay queryable but drop out of the queue.
var ActiveStatuses = []Status{StatusNew, StatusReviewing, StatusOfferMade, StatusUnderContract}

// Valid reports whether s is a known pipeline stage
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusOfferMade, StatusUnderContract, StatusClosed, StatusDead:
		return true
	}
	return false
}

// Active reports whether a lead in this stage belongs in the work queue
func (s Status) Active() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// Lead is a property lead in the pipeline. The financial snapshot fields are
// denormalized onto the lead row so queue queries never join.
type Lead struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Source   string `json:"source"`
	Status   Status `json:"status"`
	Priority int    `json:"priority"`
	Notes    string `json:"notes"`

	OfferPrice    float64 `json:"offer_price"`
	RehabCosts    float64 `json:"rehab_costs"`
	ARV           float64 `json:"arv"`
	PotentialRent float64 `json:"potential_rent"`
	Units         int     `json:"units"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the lead's financial inputs as a scoring snapshot
func (l *Lead) Snapshot() scoring.Snapshot {
	return scoring.Snapshot{
		OfferPrice:    l.OfferPrice,
		RehabCosts:    l.RehabCosts,
		ARV:           l.ARV,
		PotentialRent: l.PotentialRent,
		Units:         l.Units,
	}
}

// Validate checks a lead before persistence
func (l *Lead) Validate() error {
	if l.Address == "" {
		return fmt.Errorf("address is required")
	}
	if !l.Status.Valid() {
		return fmt.Errorf("invalid status: %s", l.Status)
	}
	if l.OfferPrice < 0 || l.RehabCosts < 0 || l.ARV < 0 || l.PotentialRent < 0 {
		return fmt.Errorf("financial fields must not be negative")
	}
	if l.Units < 0 {
		return fmt.Errorf("units must not be negative")
	}
	return nil
}

// MAO sizing: offers above 70% of ARV minus rehab and a fixed closing buffer
// historically lose money in this buy-box.
const (
	maoARVRate       = 0.70
	maoClosingBuffer = 5000.0
)

// MAO returns the maximum allowable offer for an ARV and rehab estimate.
// Can be negative for deals with no margin; the UI shows those in red.
func MAO(arv, rehabCosts float64) float64 {
	return arv*maoARVRate - rehabCosts - maoClosingBuffer
}

// QueueItem is a queue row: the lead plus everything derived for display
type QueueItem struct {
	Lead      Lead    `json:"lead"`
	HoldScore int     `json:"hold_score"`
	FlipScore int     `json:"flip_score"`
	MaxScore  int     `json:"max_score"`
	MAO       float64 `json:"mao"`
}

// NewQueueItem derives a queue row from a lead
func NewQueueItem(lead Lead) QueueItem {
	hold := scoring.CalculateHoldScore(lead.PotentialRent, lead.OfferPrice, lead.RehabCosts, lead.ARV, lead.Units)
	flip := scoring.CalculateFlipScore(lead.OfferPrice, lead.RehabCosts, lead.ARV)

	max := hold
	if flip > max {
		max = flip
	}

	return QueueItem{
		Lead:      lead,
		HoldScore: hold,
		FlipScore: flip,
		MaxScore:  max,
		MAO:       MAO(lead.ARV, lead.RehabCosts),
	}
}
