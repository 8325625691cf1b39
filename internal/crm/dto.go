package crm

import (
	"errors"
	"time"
)

// DatasetDTO is the on-disk shape of a CRM export.
type DatasetDTO struct {
	Opportunities []OpportunityDTO `json:"opportunities,omitempty" jsonschema:"opportunities visible to the dashboard session"`
	Interactions  []InteractionDTO `json:"interactions,omitempty" jsonschema:"logged touchpoints with organizations"`
	FollowUps     []InteractionDTO `json:"followUps,omitempty" jsonschema:"open action items scheduled on interactions"`
}

// OpportunityDTO represents a single opportunity row in the export.
type OpportunityDTO struct {
	ID               string  `json:"id"`
	PrincipalID      string  `json:"principalId"`
	ProductID        string  `json:"productId,omitempty"`
	AccountManagerID string  `json:"accountManagerId,omitempty"`
	Stage            string  `json:"stage" jsonschema:"pipeline stage, e.g. lead or closed-won"`
	EstimatedValue   float64 `json:"estimatedValue,omitempty"`
	CreatedAt        string  `json:"createdAt,omitempty" jsonschema:"RFC3339 timestamp or YYYY-MM-DD"`
	UpdatedAt        string  `json:"updatedAt,omitempty" jsonschema:"RFC3339 timestamp or YYYY-MM-DD"`
}

// InteractionDTO represents an interaction or follow-up row.
type InteractionDTO struct {
	ID               string  `json:"id"`
	OrganizationID   string  `json:"organizationId"`
	AccountManagerID string  `json:"accountManagerId,omitempty"`
	InteractionDate  string  `json:"interactionDate" jsonschema:"RFC3339 timestamp or YYYY-MM-DD"`
	FollowUpDate     *string `json:"followUpDate,omitempty"`
	FollowUpRequired bool    `json:"followUpRequired,omitempty"`
}

var errEmptyTime = errors.New("empty timestamp")

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC3339 timestamps as well as zone-less timestamps and bare dates.
// Zone-less values are interpreted in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errEmptyTime
	}
	if loc == nil {
		loc = time.UTC
	}

	var lastErr error
	for i, layout := range layouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
