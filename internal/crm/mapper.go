package crm

import (
	"strings"
	"time"
)

// MapDataset transforms the export DTO into domain entities.
// Unparseable timestamps are treated as absent rather than failing the whole dataset.
func MapDataset(dto DatasetDTO, loc *time.Location) Dataset {
	ds := Dataset{
		Opportunities: make([]Opportunity, 0, len(dto.Opportunities)),
		Interactions:  make([]Interaction, 0, len(dto.Interactions)),
		FollowUps:     make([]FollowUp, 0, len(dto.FollowUps)),
	}
	for _, o := range dto.Opportunities {
		ds.Opportunities = append(ds.Opportunities, MapOpportunity(o, loc))
	}
	for _, i := range dto.Interactions {
		ds.Interactions = append(ds.Interactions, MapInteraction(i, loc))
	}
	for _, f := range dto.FollowUps {
		ds.FollowUps = append(ds.FollowUps, MapInteraction(f, loc))
	}
	return ds
}

// MapOpportunity converts a single opportunity row.
func MapOpportunity(item OpportunityDTO, loc *time.Location) Opportunity {
	opp := Opportunity{
		ID:               item.ID,
		PrincipalID:      item.PrincipalID,
		ProductID:        item.ProductID,
		AccountManagerID: item.AccountManagerID,
		Stage:            NormalizeStage(item.Stage),
		EstimatedValue:   item.EstimatedValue,
	}

	if t, err := ParseTime(item.CreatedAt, loc); err == nil {
		opp.CreatedAt = t
	}
	if t, err := ParseTime(item.UpdatedAt, loc); err == nil {
		opp.UpdatedAt = t
	}
	return opp
}

// MapInteraction converts an interaction or follow-up row.
func MapInteraction(item InteractionDTO, loc *time.Location) Interaction {
	in := Interaction{
		ID:               item.ID,
		OrganizationID:   item.OrganizationID,
		AccountManagerID: item.AccountManagerID,
		FollowUpRequired: item.FollowUpRequired,
	}

	if t, err := ParseTime(item.InteractionDate, loc); err == nil {
		in.InteractionDate = t
	}
	if item.FollowUpDate != nil {
		if t, err := ParseTime(*item.FollowUpDate, loc); err == nil {
			in.FollowUpDate = &t
		}
	}
	return in
}

// NormalizeStage folds the spellings seen in exports ("Closed Won", "closed_won") onto the canonical stage names.
func NormalizeStage(s string) Stage {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	return Stage(s)
}
