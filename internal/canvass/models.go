package canvass

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ZoneStatus is the lifecycle status of a canvassing zone.
type ZoneStatus string

const (
	ZoneDraft     ZoneStatus = "DRAFT"
	ZoneActive    ZoneStatus = "ACTIVE"
	ZoneInactive  ZoneStatus = "INACTIVE"
	ZoneScheduled ZoneStatus = "SCHEDULED"
	ZoneCompleted ZoneStatus = "COMPLETED"
)

// AssignmentStatus is the lifecycle status of an AssignmentRecord.
// Terminal states (COMPLETED, CANCELLED) admit no further transitions.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "PENDING"
	AssignmentActive    AssignmentStatus = "ACTIVE"
	AssignmentInactive  AssignmentStatus = "INACTIVE"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

// ScheduleStatus is the lifecycle status of a ScheduledAssignment.
// ACTIVATED is its own terminal success state; the AssignmentRecord it
// produces starts ACTIVE and lives on its own enum.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "PENDING"
	ScheduleScheduled ScheduleStatus = "SCHEDULED"
	ScheduleActivated ScheduleStatus = "ACTIVATED"
	ScheduleCancelled ScheduleStatus = "CANCELLED"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
)

// Visit statuses an agent can report for a building.
const (
	VisitNotVisited    = "not-visited"
	VisitInterested    = "interested"
	VisitVisited       = "visited"
	VisitCallback      = "callback"
	VisitAppointment   = "appointment"
	VisitFollowUp      = "follow-up"
	VisitNotInterested = "not-interested"
)

var visitStatuses = map[string]struct{}{
	VisitNotVisited:    {},
	VisitInterested:    {},
	VisitVisited:       {},
	VisitCallback:      {},
	VisitAppointment:   {},
	VisitFollowUp:      {},
	VisitNotInterested: {},
}

// Zone is a geographic canvassing area. The building-index columns are
// derived from the address list and recomputed in full whenever it changes;
// they are never patched incrementally.
type Zone struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string     `json:"name"`
	Status  ZoneStatus `gorm:"default:'DRAFT'" json:"status"`
	Polygon string     `json:"polygon"` // WKT, opaque to this service

	// BuildingIndex (derived)
	TotalBuildings   int            `json:"total_buildings"`
	ResidentialHomes int            `json:"residential_homes"`
	Addresses        pq.StringArray `gorm:"type:text[]" json:"addresses"`
	Coordinates      pq.StringArray `gorm:"type:text[]" json:"coordinates"` // "lat,lng", 1:1 with Addresses
	OddHouseNumbers  pq.Int64Array  `gorm:"type:bigint[]" json:"odd_house_numbers"`
	EvenHouseNumbers pq.Int64Array  `gorm:"type:bigint[]" json:"even_house_numbers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignmentRecord is one agent-or-team-to-zone responsibility window.
// Exactly one of AgentID/TeamID is set (checked at construction).
// Records are never deleted; terminal states are kept as audit history.
type AssignmentRecord struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ZoneID        uuid.UUID        `gorm:"type:uuid;index" json:"zone_id"`
	AgentID       *string          `json:"agent_id,omitempty"`
	TeamID        *string          `json:"team_id,omitempty"`
	EffectiveFrom time.Time        `json:"effective_from"`
	EffectiveTo   *time.Time       `json:"effective_to,omitempty"` // nil = open-ended
	Status        AssignmentStatus `json:"status"`
	AssignedBy    string           `json:"assigned_by"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ScheduledAssignment is a future-dated intent to assign. On activation it
// produces exactly one AssignmentRecord and becomes immutable history.
type ScheduledAssignment struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ZoneID             uuid.UUID      `gorm:"type:uuid;index" json:"zone_id"`
	AgentID            *string        `json:"agent_id,omitempty"`
	TeamID             *string        `json:"team_id,omitempty"`
	ScheduledDate      time.Time      `json:"scheduled_date"`
	EffectiveFrom      time.Time      `json:"effective_from"`
	EffectiveTo        *time.Time     `json:"effective_to,omitempty"`
	Status             ScheduleStatus `gorm:"default:'PENDING'" json:"status"`
	NotificationSent   bool           `json:"notification_sent"`
	AssignmentRecordID *uuid.UUID     `gorm:"type:uuid" json:"assignment_record_id,omitempty"`
	AssignedBy         string         `json:"assigned_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// CanvassingStatusEntry is the last reported outcome for one building in a
// zone. Writes are last-write-wins; entries are retained indefinitely so
// canvassing history survives assignment turnover.
type CanvassingStatusEntry struct {
	ZoneID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"zone_id"`
	BuildingKey  string     `gorm:"primaryKey" json:"building_key"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	ContactName  string     `json:"contact_name"`
	ContactPhone string     `json:"contact_phone"`
	ContactEmail string     `json:"contact_email"`
	LastVisited  *time.Time `json:"last_visited,omitempty"`
	UpdatedBy    string     `json:"updated_by"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Zone) TableName() string {
	return "canvass.zones"
}

func (AssignmentRecord) TableName() string {
	return "canvass.assignment_records"
}

func (ScheduledAssignment) TableName() string {
	return "canvass.scheduled_assignments"
}

func (CanvassingStatusEntry) TableName() string {
	return "canvass.canvassing_statuses"
}

// subject returns whichever of agent/team the record designates.
func subjectOf(agentID, teamID *string) (agent, team string) {
	if agentID != nil {
		agent = *agentID
	}
	if teamID != nil {
		team = *teamID
	}
	return agent, team
}

// terminal reports whether no further transitions are allowed.
func (a AssignmentStatus) terminal() bool {
	return a == AssignmentCompleted || a == AssignmentCancelled
}

var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentPending:  {AssignmentActive, AssignmentCompleted, AssignmentCancelled},
	AssignmentActive:   {AssignmentInactive, AssignmentCompleted, AssignmentCancelled},
	AssignmentInactive: {AssignmentActive, AssignmentCompleted, AssignmentCancelled},
}

func canTransition(from, to AssignmentStatus) bool {
	for _, t := range assignmentTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// activeEquivalent reports whether the record makes its subject the zone's
// current responsible party at instant now: ACTIVE outright, or PENDING with
// an effective window that has already started.
func (a *AssignmentRecord) activeEquivalent(now time.Time) bool {
	switch a.Status {
	case AssignmentActive:
		return true
	case AssignmentPending:
		return !a.EffectiveFrom.After(now)
	}
	return false
}
