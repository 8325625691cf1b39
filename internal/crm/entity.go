package crm

import (
	"time"
)

// Stage is the pipeline phase of an opportunity.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed-won"
	StageClosedLost  Stage = "closed-lost"
)

// IsTerminal reports whether the stage ends the opportunity lifecycle.
func (s Stage) IsTerminal() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Opportunity is a read-only view of a sales opportunity.
type Opportunity struct {
	ID               string
	PrincipalID      string
	ProductID        string
	AccountManagerID string
	Stage            Stage
	EstimatedValue   float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Interaction is a logged touchpoint with an organization, optionally carrying a follow-up.
type Interaction struct {
	ID               string
	OrganizationID   string
	AccountManagerID string
	InteractionDate  time.Time
	FollowUpDate     *time.Time
	FollowUpRequired bool
}

// FollowUp shares the interaction shape; the follow-up collection holds open action items.
type FollowUp = Interaction

// Dataset is the full, already materialized set of entities for one dashboard session.
type Dataset struct {
	Opportunities []Opportunity
	Interactions  []Interaction
	FollowUps     []FollowUp
}
