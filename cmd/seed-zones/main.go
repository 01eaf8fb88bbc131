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

// Seeds a couple of demo zones for local development.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	canvass.Init()

	zones := []canvass.CreateZoneRequest{
		{
			Name:    "Maple Heights North",
			Status:  canvass.ZoneActive,
			Polygon: "POLYGON((-86.53 39.17,-86.51 39.17,-86.51 39.16,-86.53 39.16,-86.53 39.17))",
			Addresses: []string{
				"101 Maple St", "102 Maple St", "103 Maple St", "104 Maple St",
				"7 Oak Ave", "9 Oak Ave", "12 Oak Ave",
				"Community Center, Maple St",
			},
			Coordinates: []string{
				"39.168,-86.527", "39.168,-86.526", "39.167,-86.527", "39.167,-86.526",
				"39.166,-86.525", "39.166,-86.524", "39.165,-86.525",
				"39.169,-86.528",
			},
		},
		{
			Name:    "Riverside East",
			Polygon: "POLYGON((-86.50 39.15,-86.48 39.15,-86.48 39.14,-86.50 39.14,-86.50 39.15))",
			Addresses: []string{
				"200 River Rd", "202 River Rd", "215 River Rd", "221 River Rd",
			},
			Coordinates: []string{
				"39.148,-86.495", "39.148,-86.494", "39.147,-86.493", "39.147,-86.492",
			},
		},
	}

	ctx := context.Background()
	for _, req := range zones {
		zone, err := canvass.Core.CreateZone(ctx, req)
		if err != nil {
			log.Fatalf("Failed to seed zone %q: %v", req.Name, err)
		}
		fmt.Printf("✓ Seeded zone %q (%s): %d buildings, %d odd / %d even\n",
			zone.Name, zone.ID, zone.TotalBuildings,
			len(zone.OddHouseNumbers), len(zone.EvenHouseNumbers))
	}
}
