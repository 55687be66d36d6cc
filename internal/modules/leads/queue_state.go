package leads

import (
	"sort"
	"time"
)

// QueueState is the dashboard's queue view: the ordered active items plus
// per-stage counts for the badges. It is an immutable value; every change
// goes through a reducer that returns a fresh state, so the websocket hub can
// hand the current snapshot to a connecting client without locking against
// writers.
type QueueState struct {
	Items     []QueueItem    `json:"items"`
	Counts    map[Status]int `json:"counts"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewQueueState builds a state from scratch. Items are sorted, counts copied.
func NewQueueState(items []QueueItem, counts map[Status]int) QueueState {
	sorted := make([]QueueItem, len(items))
	copy(sorted, items)
	sortQueueItems(sorted)

	return QueueState{
		Items:     sorted,
		Counts:    copyCounts(counts),
		UpdatedAt: time.Now(),
	}
}

// ReduceLeadCreated returns the state after a new lead enters the pipeline
func ReduceLeadCreated(s QueueState, lead Lead) QueueState {
	next := s.clone()
	next.Counts[lead.Status]++
	if lead.Status.Active() {
		next.Items = append(next.Items, NewQueueItem(lead))
		sortQueueItems(next.Items)
	}
	return next
}

// ReduceLeadUpdated returns the state after a lead's fields changed without a
// stage transition. The item is re-derived so scores and MAO stay current.
func ReduceLeadUpdated(s QueueState, lead Lead) QueueState {
	next := s.clone()
	next.Items = removeItem(next.Items, lead.ID)
	if lead.Status.Active() {
		next.Items = append(next.Items, NewQueueItem(lead))
		sortQueueItems(next.Items)
	}
	return next
}

// ReduceStatusChanged returns the state after a lead moved between stages
func ReduceStatusChanged(s QueueState, lead Lead, oldStatus Status) QueueState {
	next := s.clone()
	if next.Counts[oldStatus] > 0 {
		next.Counts[oldStatus]--
	}
	next.Counts[lead.Status]++

	next.Items = removeItem(next.Items, lead.ID)
	if lead.Status.Active() {
		next.Items = append(next.Items, NewQueueItem(lead))
		sortQueueItems(next.Items)
	}
	return next
}

// ReduceLeadDeleted returns the state after a lead was removed entirely
func ReduceLeadDeleted(s QueueState, leadID string, status Status) QueueState {
	next := s.clone()
	if next.Counts[status] > 0 {
		next.Counts[status]--
		if next.Counts[status] == 0 {
			delete(next.Counts, status)
		}
	}
	next.Items = removeItem(next.Items, leadID)
	return next
}

// clone copies the state so reducers never touch the input value
func (s QueueState) clone() QueueState {
	items := make([]QueueItem, len(s.Items))
	copy(items, s.Items)

	return QueueState{
		Items:     items,
		Counts:    copyCounts(s.Counts),
		UpdatedAt: time.Now(),
	}
}

// sortQueueItems orders the queue: priority override first, then the better
// of the two scores, then oldest lead first so stale deals surface.
func sortQueueItems(items []QueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Lead.Priority != b.Lead.Priority {
			return a.Lead.Priority > b.Lead.Priority
		}
		if a.MaxScore != b.MaxScore {
			return a.MaxScore > b.MaxScore
		}
		return a.Lead.CreatedAt.Before(b.Lead.CreatedAt)
	})
}

func removeItem(items []QueueItem, leadID string) []QueueItem {
	out := items[:0]
	for _, item := range items {
		if item.Lead.ID != leadID {
			out = append(out, item)
		}
	}
	return out
}

func copyCounts(counts map[Status]int) map[Status]int {
	out := make(map[Status]int, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}
