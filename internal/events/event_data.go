package events

// EventData is the interface that all typed event payloads implement.
// This allows for type-safe event data while maintaining flexibility.
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// LeadChangedData contains data for LeadCreated/LeadUpdated/LeadDeleted events
type LeadChangedData struct {
	Kind    EventType `json:"-"`
	LeadID  string    `json:"lead_id"`
	Address string    `json:"address"`
	Status  string    `json:"status"`
}

// EventType returns the event type for LeadChangedData
func (d *LeadChangedData) EventType() EventType {
	return d.Kind
}

// LeadStatusChangedData contains data for LeadStatusChanged events
type LeadStatusChangedData struct {
	LeadID         string `json:"lead_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// EventType returns the event type for LeadStatusChangedData
func (d *LeadStatusChangedData) EventType() EventType {
	return LeadStatusChanged
}

// PropertyUpdatedData contains data for PropertyUpdated events
type PropertyUpdatedData struct {
	LeadID        string  `json:"lead_id"`
	PotentialRent float64 `json:"potential_rent"`
	Units         int     `json:"units"`
}

// EventType returns the event type for PropertyUpdatedData
func (d *PropertyUpdatedData) EventType() EventType {
	return PropertyUpdated
}

// ScoreRecalculatedData contains data for ScoreRecalculated events
type ScoreRecalculatedData struct {
	LeadID    string `json:"lead_id"`
	HoldScore int    `json:"hold_score"`
	FlipScore int    `json:"flip_score"`
}

// EventType returns the event type for ScoreRecalculatedData
func (d *ScoreRecalculatedData) EventType() EventType {
	return ScoreRecalculated
}

// QueueChangedData contains data for QueueChanged events
type QueueChangedData struct {
	ActiveLeads int `json:"active_leads"`
}

// EventType returns the event type for QueueChangedData
func (d *QueueChangedData) EventType() EventType {
	return QueueChanged
}

// JobCompletedData contains data for JobCompleted events
type JobCompletedData struct {
	JobName  string `json:"job_name"`
	Success  bool   `json:"success"`
	Detail   string `json:"detail,omitempty"`
	Duration int64  `json:"duration_ms"`
}

// EventType returns the event type for JobCompletedData
func (d *JobCompletedData) EventType() EventType {
	return JobCompleted
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Archive   string `json:"archive"`
	SizeBytes int64  `json:"size_bytes"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}
