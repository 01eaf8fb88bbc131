package canvass

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GroundGame/Canvass-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Core is the engine the HTTP handlers operate on. It is initialized in
// Init() and backed by the shared gorm connection.
var Core *Engine

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		invalidSubject *InvalidSubjectError
		overlap        *OverlapConflictError
		unknownBldg    *UnknownBuildingError
		unknownZone    *UnknownZoneError
		unknownRec     *UnknownRecordError
		pastSchedule   *PastScheduleError
		badTransition  *InvalidTransitionError
		badVisit       *InvalidVisitStatusError
	)
	switch {
	case errors.As(err, &invalidSubject), errors.As(err, &pastSchedule),
		errors.As(err, &badTransition), errors.As(err, &badVisit):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &overlap):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &unknownBldg), errors.As(err, &unknownZone), errors.As(err, &unknownRec):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func urlID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

func CreateZoneHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Zone name is required", http.StatusBadRequest)
		return
	}
	if len(req.Addresses) != len(req.Coordinates) {
		http.Error(w, "addresses and coordinates must be the same length", http.StatusBadRequest)
		return
	}

	zone, err := Core.CreateZone(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, zone)
}

func RebuildIndexHandler(w http.ResponseWriter, r *http.Request) {
	zoneID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid zone id", http.StatusBadRequest)
		return
	}

	var req struct {
		Addresses   []string `json:"addresses"`
		Coordinates []string `json:"coordinates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Addresses) != len(req.Coordinates) {
		http.Error(w, "addresses and coordinates must be the same length", http.StatusBadRequest)
		return
	}

	zone, err := Core.RebuildBuildingIndex(r.Context(), zoneID, req.Addresses, req.Coordinates)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zone)
}

func ZoneSummaryHandler(w http.ResponseWriter, r *http.Request) {
	zoneID, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid zone id", http.StatusBadRequest)
		return
	}

	summary, err := Core.GetZoneSummary(r.Context(), zoneID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func CreateAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.AssignedBy = userID

	rec, err := Core.CreateAssignment(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func GetAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	rec, err := Core.GetAssignment(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func CancelAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	rec, err := Core.CancelAssignment(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func TransitionAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid assignment id", http.StatusBadRequest)
		return
	}

	var req struct {
		Status AssignmentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := Core.TransitionAssignment(r.Context(), id, req.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func ScheduleAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ScheduleAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.AssignedBy = userID

	sched, err := Core.ScheduleAssignment(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

func CancelScheduledHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		http.Error(w, "Invalid scheduled assignment id", http.StatusBadRequest)
		return
	}

	sched, err := Core.CancelScheduledAssignment(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func SweepHandler(w http.ResponseWriter, r *http.Request) {
	report, err := Core.RunSweep(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func RecordVisitHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	zoneID, idOK := urlID(r, "id")
	if !idOK {
		http.Error(w, "Invalid zone id", http.StatusBadRequest)
		return
	}

	var req RecordVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ZoneID = zoneID
	req.UpdatedBy = userID

	entry, err := Core.RecordVisit(r.Context(), req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
