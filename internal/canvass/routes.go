package canvass

import (
	"net/http"

	"github.com/GroundGame/Canvass-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.SessionFetcher, visitsPerMinute int) http.Handler {
	r := chi.NewRouter()

	// Public reads
	r.Get("/zones/{id}/summary", ZoneSummaryHandler)
	r.Get("/assignments/{id}", GetAssignmentHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(fetcher))

		r.Post("/zones", CreateZoneHandler)
		r.Post("/zones/{id}/index", RebuildIndexHandler)
		r.Post("/assignments", CreateAssignmentHandler)
		r.Delete("/assignments/{id}", CancelAssignmentHandler)
		r.Patch("/assignments/{id}/status", TransitionAssignmentHandler)
		r.Post("/assignments/schedule", ScheduleAssignmentHandler)
		r.Delete("/assignments/schedule/{id}", CancelScheduledHandler)
		r.Post("/scheduler/sweep", SweepHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitMiddleware(visitsPerMinute))
			r.Post("/zones/{id}/visits", RecordVisitHandler)
		})
	})

	return r
}
