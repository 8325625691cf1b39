package eventlog

import "time"

// StageEvent records one stage transition of an opportunity.
// It is the unit of the optional stage-change audit log.
type StageEvent struct {
	// OpportunityID identifies the opportunity that moved.
	OpportunityID string `json:"opportunityId"`
	// PrincipalID is the owning principal at the time of the change.
	PrincipalID string `json:"principalId,omitempty"`
	// FromStage is empty for the creation event.
	FromStage string `json:"fromStage,omitempty"`
	ToStage   string `json:"toStage"`
	// Timestamp is the physical time of the change (Unix microseconds).
	Timestamp int64 `json:"ts"`
}

// Time returns the event timestamp as a time.Time.
func (e StageEvent) Time() time.Time {
	return time.UnixMicro(e.Timestamp)
}

// IsTransition reports whether the event actually changed the stage.
func (e StageEvent) IsTransition() bool {
	return e.FromStage != "" && e.FromStage != e.ToStage
}
