package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"crm-kpi/internal/crm"
	"crm-kpi/internal/eventlog"
)

type GeneratorConfig struct {
	Scenario      string // "steady", "growth" or "backlog"
	Opportunities int
	Principals    int
	Days          int // history length for interactions
	Now           time.Time
	Seed          int64
}

var pipeline = []crm.Stage{crm.StageLead, crm.StageQualified, crm.StageProposal, crm.StageNegotiation}

var accountManagers = []string{"am-ada", "am-grace", "am-linus", "am-barbara"}

// Generate builds a synthetic dataset and the stage log that produced its opportunity stages.
// The same config always yields the same output.
func Generate(cfg GeneratorConfig) (crm.DatasetDTO, []eventlog.StageEvent) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Principals <= 0 {
		cfg.Principals = 3
	}
	if cfg.Days <= 0 {
		cfg.Days = 70
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	now := cfg.Now.UTC()

	principals := make([]string, cfg.Principals)
	for i := range principals {
		principals[i] = fmt.Sprintf("principal-%d", i+1)
	}

	var dto crm.DatasetDTO
	var events []eventlog.StageEvent

	// 1. Opportunities walk the pipeline from their creation date
	for i := 0; i < cfg.Opportunities; i++ {
		id := newID(cfg.Seed, "opp", i)
		principal := principals[rng.Intn(len(principals))]
		created := now.Add(-time.Duration(rng.Intn(cfg.Days*24)) * time.Hour)

		stage := crm.StageLead
		last := created
		events = append(events, eventlog.StageEvent{OpportunityID: id, PrincipalID: principal, ToStage: string(stage), Timestamp: created.UnixMicro()})

		for step := 1; ; step++ {
			next := last.Add(time.Duration(2+rng.Intn(12)) * 24 * time.Hour)
			if next.After(now) || rng.Float64() < stallChance(cfg.Scenario) {
				break
			}
			var to crm.Stage
			if step < len(pipeline) {
				to = pipeline[step]
			} else if rng.Float64() < 0.6 {
				to = crm.StageClosedWon
			} else {
				to = crm.StageClosedLost
			}
			events = append(events, eventlog.StageEvent{OpportunityID: id, PrincipalID: principal, FromStage: string(stage), ToStage: string(to), Timestamp: next.UnixMicro()})
			stage, last = to, next
			if stage.IsTerminal() {
				break
			}
		}

		dto.Opportunities = append(dto.Opportunities, crm.OpportunityDTO{
			ID:               id,
			PrincipalID:      principal,
			ProductID:        fmt.Sprintf("%s-sku-%d", principal, 1+rng.Intn(3)),
			AccountManagerID: accountManagers[rng.Intn(len(accountManagers))],
			Stage:            string(stage),
			EstimatedValue:   math.Round(1000 + rng.Float64()*49000),
			CreatedAt:        created.Format(time.RFC3339),
			UpdatedAt:        last.Format(time.RFC3339),
		})
	}

	// 2. Interactions, some carrying follow-ups
	n := 0
	for d := cfg.Days; d >= 0; d-- {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -d)
		for k := 0; k < dailyInteractions(cfg.Scenario, d, cfg.Days, rng); k++ {
			at := dayStart.Add(time.Duration(8*60+rng.Intn(10*60)) * time.Minute)
			if at.After(now) {
				continue
			}
			in := crm.InteractionDTO{
				ID:               newID(cfg.Seed, "int", n),
				OrganizationID:   principals[rng.Intn(len(principals))],
				AccountManagerID: accountManagers[rng.Intn(len(accountManagers))],
				InteractionDate:  at.Format(time.RFC3339),
			}
			n++

			if rng.Float64() < 0.5 {
				due := at.AddDate(0, 0, 1+rng.Intn(10))
				s := due.Format(time.RFC3339)
				in.FollowUpDate = &s
				in.FollowUpRequired = due.After(now) || rng.Float64() < openChance(cfg.Scenario)
			}

			dto.Interactions = append(dto.Interactions, in)
			if in.FollowUpDate != nil && in.FollowUpRequired {
				dto.FollowUps = append(dto.FollowUps, in)
			}
		}
	}

	return dto, events
}

func newID(seed int64, kind string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d-%d", kind, seed, i))).String()
}

func stallChance(scenario string) float64 {
	if scenario == "backlog" {
		return 0.35
	}
	return 0.15
}

// openChance is the probability that a past-due follow-up was never completed.
func openChance(scenario string) float64 {
	if scenario == "backlog" {
		return 0.6
	}
	return 0.15
}

func dailyInteractions(scenario string, daysAgo, days int, rng *rand.Rand) int {
	switch scenario {
	case "growth":
		progress := 1 - float64(daysAgo)/float64(days)
		return 1 + int(progress*5) + rng.Intn(2)
	case "backlog":
		return 1 + rng.Intn(2)
	default:
		return 2 + rng.Intn(3)
	}
}

// Save writes <name>.json and the <name>.stages.jsonl stage log into outDir.
func Save(outDir string, name string, dto crm.DatasetDTO, events []eventlog.StageEvent) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, name+".json"), data, 0644); err != nil {
		return err
	}

	store := eventlog.NewEventStore()
	stagesID := name + ".stages"
	store.Append(stagesID, events)
	return store.Save(outDir, stagesID)
}
