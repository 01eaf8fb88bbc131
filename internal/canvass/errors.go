package canvass

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvalidSubjectError is returned when an assignment names neither or both
// of agent/team. Rejected at the boundary, never partially applied.
type InvalidSubjectError struct {
	AgentID string
	TeamID  string
}

func (e *InvalidSubjectError) Error() string {
	if e.AgentID == "" && e.TeamID == "" {
		return "assignment subject: neither agent_id nor team_id supplied"
	}
	return fmt.Sprintf("assignment subject: both agent_id (%s) and team_id (%s) supplied", e.AgentID, e.TeamID)
}

// OverlapConflictError is returned when a candidate window would make two
// subjects responsible for the same zone at the same instant. Recoverable:
// the caller may adjust the window or cancel the named record first.
type OverlapConflictError struct {
	ZoneID        uuid.UUID
	ConflictingID uuid.UUID
}

func (e *OverlapConflictError) Error() string {
	return fmt.Sprintf("zone %s: window overlaps assignment %s", e.ZoneID, e.ConflictingID)
}

// UnknownBuildingError is returned when a visit names a building key absent
// from the zone's building index.
type UnknownBuildingError struct {
	ZoneID      uuid.UUID
	BuildingKey string
}

func (e *UnknownBuildingError) Error() string {
	return fmt.Sprintf("zone %s: building %q not in index", e.ZoneID, e.BuildingKey)
}

type UnknownZoneError struct {
	ZoneID uuid.UUID
}

func (e *UnknownZoneError) Error() string {
	return fmt.Sprintf("zone %s not found", e.ZoneID)
}

type UnknownRecordError struct {
	ID uuid.UUID
}

func (e *UnknownRecordError) Error() string {
	return fmt.Sprintf("assignment %s not found", e.ID)
}

// PastScheduleError is returned when a scheduled assignment's date is
// earlier than its creation time.
type PastScheduleError struct {
	ScheduledDate time.Time
}

func (e *PastScheduleError) Error() string {
	return fmt.Sprintf("scheduled date %s is in the past", e.ScheduledDate.Format(time.RFC3339))
}

type InvalidTransitionError struct {
	From AssignmentStatus
	To   AssignmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("assignment status cannot move %s -> %s", e.From, e.To)
}

type InvalidVisitStatusError struct {
	Status string
}

func (e *InvalidVisitStatusError) Error() string {
	return fmt.Sprintf("unknown visit status %q", e.Status)
}
