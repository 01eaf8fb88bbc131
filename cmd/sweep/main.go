package main

import (
	"context"
	"fmt"
	"log"

	"github.com/GroundGame/Canvass-Backend/internal/canvass"
	"github.com/GroundGame/Canvass-Backend/internal/config"
	"github.com/GroundGame/Canvass-Backend/internal/db"
	"github.com/joho/godotenv"
)

// One-shot scheduler sweep for cron-style deployments that don't run the
// in-process ticker.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	canvass.Init()

	report, err := canvass.Core.RunSweep(context.Background())
	if err != nil {
		log.Fatalf("Sweep error: %v", err)
	}

	fmt.Printf("Sweep complete: due=%d activated=%d conflicts=%d\n",
		report.Due, len(report.Activated), len(report.Conflicts))
	for _, id := range report.Activated {
		fmt.Printf("  activated %s\n", id)
	}
	for _, id := range report.Conflicts {
		fmt.Printf("  conflict  %s (left pending, will retry)\n", id)
	}
}
