package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"crm-kpi/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, growth, backlog")
	outDir := flag.String("out", ".", "Output directory for the dataset and stage log")
	name := flag.String("name", "crm", "Dataset base name")
	count := flag.Int("count", 120, "Number of opportunities to generate")
	principals := flag.Int("principals", 3, "Number of principals")
	days := flag.Int("days", 70, "Days of interaction history")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:      *scenario,
		Opportunities: *count,
		Principals:    *principals,
		Days:          *days,
		Now:           time.Now(),
		Seed:          *seed,
	}

	fmt.Printf("Generating scenario '%s' (Opportunities: %d, Principals: %d) to %s...\n", cfg.Scenario, cfg.Opportunities, cfg.Principals, *outDir)

	dto, events := engine.Generate(cfg)

	if err := engine.Save(*outDir, *name, dto, events); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d opportunities, %d interactions, %d open follow-ups, %d stage events.\n",
		len(dto.Opportunities), len(dto.Interactions), len(dto.FollowUps), len(events))
}
