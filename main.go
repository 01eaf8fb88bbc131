package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/GroundGame/Canvass-Backend/internal/canvass"
	"github.com/GroundGame/Canvass-Backend/internal/config"
	"github.com/GroundGame/Canvass-Backend/internal/db"
	"github.com/GroundGame/Canvass-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect(cfg.DatabaseURL)
	middleware.SetAllowedOrigins(cfg.AllowedOrigins)

	canvass.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go canvass.Core.StartSweeper(ctx, cfg.SweepEvery())

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/canvass", canvass.SetupRoutes(middleware.SessionInfo{}, cfg.VisitsPerMinute))

	log.Printf("Server listening on port :%s...", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
