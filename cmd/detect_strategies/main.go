// detect_strategies classifies a broker position snapshot CSV into wheel
// strategy archetypes and prints the verdicts.
package main

import (
	"flag"
	"fmt"
	"log"

	"wheeltracker/config"
	"wheeltracker/internal/detect"
	"wheeltracker/internal/utils"
)

func main() {
	input := flag.String("input", "data/positions.csv", "Path to a broker position snapshot CSV")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	positions, err := utils.ReadPositionsFromCSV(*input)
	if err != nil {
		log.Fatalf("Failed to read positions: %v", err)
	}

	detector := detect.New(detect.Config{PartialCoverageFloor: cfg.DetectPartialCoverageFloor})
	detections := detector.Detect(positions)
	if len(detections) == 0 {
		fmt.Println("No recognizable strategies in snapshot.")
		return
	}
	for _, d := range detections {
		fmt.Printf("%-6s %-16s confidence=%-6s positions=%d\n", d.Ticker, d.Strategy, d.Confidence, len(d.Positions))
	}
}
