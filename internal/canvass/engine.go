package canvass

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine owns the zone assignment lifecycle and the per-building canvassing
// state. All assignment mutations for a zone are serialized through a
// per-zone mutex; visit writes are serialized per (zone, building) pair.
type Engine struct {
	store      Store
	zoneLocks  *keyedMutex
	visitLocks *keyedMutex
	dispatcher Dispatcher
	now        func() time.Time
}

func NewEngine(store Store, dispatcher Dispatcher) *Engine {
	return &Engine{
		store:      store,
		zoneLocks:  newKeyedMutex(),
		visitLocks: newKeyedMutex(),
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// CreateZoneRequest carries the inputs for a new zone. Addresses and
// Coordinates must be the same length; that is the caller's contract.
type CreateZoneRequest struct {
	Name        string     `json:"name"`
	Polygon     string     `json:"polygon"`
	Status      ZoneStatus `json:"status"`
	Addresses   []string   `json:"addresses"`
	Coordinates []string   `json:"coordinates"`
}

func (e *Engine) CreateZone(ctx context.Context, req CreateZoneRequest) (*Zone, error) {
	status := req.Status
	if status == "" {
		status = ZoneDraft
	}
	z := &Zone{
		ID:      uuid.New(),
		Name:    req.Name,
		Status:  status,
		Polygon: req.Polygon,
	}
	z.applyIndex(ProcessBuildingData(req.Addresses, req.Coordinates))
	if err := e.store.CreateZone(ctx, z); err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	return z, nil
}

// RebuildBuildingIndex recomputes a zone's derived index columns in full
// from a new address list. The index is never patched incrementally.
func (e *Engine) RebuildBuildingIndex(ctx context.Context, zoneID uuid.UUID, addresses, coordinates []string) (*Zone, error) {
	unlock := e.zoneLocks.Lock(zoneID.String())
	defer unlock()

	z, err := e.store.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	z.applyIndex(ProcessBuildingData(addresses, coordinates))
	if err := e.store.UpdateZone(ctx, z); err != nil {
		return nil, fmt.Errorf("rebuild building index: %w", err)
	}
	return z, nil
}

func (z *Zone) applyIndex(idx BuildingIndex) {
	z.TotalBuildings = idx.TotalBuildings
	z.ResidentialHomes = idx.ResidentialHomes
	z.Addresses = idx.Addresses
	z.Coordinates = idx.Coordinates
	z.OddHouseNumbers = idx.OddHouseNumbers
	z.EvenHouseNumbers = idx.EvenHouseNumbers
}

// CreateAssignmentRequest carries the inputs for an immediate assignment.
// Exactly one of AgentID/TeamID must be set.
type CreateAssignmentRequest struct {
	ZoneID        uuid.UUID  `json:"zone_id"`
	AgentID       string     `json:"agent_id"`
	TeamID        string     `json:"team_id"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
	Pending       bool       `json:"pending"` // start PENDING instead of ACTIVE
	AssignedBy    string     `json:"-"`
}

func validateSubject(agentID, teamID string) (agent, team *string, err error) {
	if (agentID == "") == (teamID == "") {
		return nil, nil, &InvalidSubjectError{AgentID: agentID, TeamID: teamID}
	}
	if agentID != "" {
		return &agentID, nil, nil
	}
	return nil, &teamID, nil
}

// CreateAssignment makes an agent or team responsible for a zone over a
// window, superseding the prior open assignment when the new window is a
// forward-dated replacement. A true overlap is rejected with
// OverlapConflictError.
func (e *Engine) CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (*AssignmentRecord, error) {
	agent, team, err := validateSubject(req.AgentID, req.TeamID)
	if err != nil {
		return nil, err
	}

	from := req.EffectiveFrom
	if from.IsZero() {
		from = e.now()
	}

	unlock := e.zoneLocks.Lock(req.ZoneID.String())
	defer unlock()

	if _, err := e.store.GetZone(ctx, req.ZoneID); err != nil {
		return nil, err
	}

	open, err := e.store.OpenAssignments(ctx, req.ZoneID)
	if err != nil {
		return nil, err
	}
	sup, err := CheckAndReserve(open, from, req.EffectiveTo)
	if err != nil {
		return nil, err
	}

	status := AssignmentActive
	if req.Pending {
		status = AssignmentPending
	}
	rec := &AssignmentRecord{
		ID:            uuid.New(),
		ZoneID:        req.ZoneID,
		AgentID:       agent,
		TeamID:        team,
		EffectiveFrom: from,
		EffectiveTo:   req.EffectiveTo,
		Status:        status,
		AssignedBy:    req.AssignedBy,
	}

	var prior *AssignmentRecord
	if sup != nil {
		prior = sup.Prior
		closeAt := sup.CloseAt
		prior.EffectiveTo = &closeAt
		prior.Status = sup.NewStatus
	}
	if err := e.store.CreateAssignment(ctx, prior, rec); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return rec, nil
}

// CancelAssignment moves a record to CANCELLED. Calling it on a record that
// is already terminal is a no-op, not an error.
func (e *Engine) CancelAssignment(ctx context.Context, id uuid.UUID) (*AssignmentRecord, error) {
	rec, err := e.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := e.zoneLocks.Lock(rec.ZoneID.String())
	defer unlock()

	// Re-read under the lock; status may have moved.
	rec, err = e.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status.terminal() {
		return rec, nil
	}
	rec.Status = AssignmentCancelled
	if err := e.store.UpdateAssignment(ctx, rec); err != nil {
		return nil, fmt.Errorf("cancel assignment: %w", err)
	}
	return rec, nil
}

// TransitionAssignment applies an explicit state-machine move: activate a
// pending record, pause an active one, resume, or close it out.
func (e *Engine) TransitionAssignment(ctx context.Context, id uuid.UUID, to AssignmentStatus) (*AssignmentRecord, error) {
	rec, err := e.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := e.zoneLocks.Lock(rec.ZoneID.String())
	defer unlock()

	rec, err = e.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == to {
		return rec, nil
	}
	if !canTransition(rec.Status, to) {
		return nil, &InvalidTransitionError{From: rec.Status, To: to}
	}
	rec.Status = to
	if err := e.store.UpdateAssignment(ctx, rec); err != nil {
		return nil, fmt.Errorf("transition assignment: %w", err)
	}
	return rec, nil
}

func (e *Engine) GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentRecord, error) {
	return e.store.GetAssignment(ctx, id)
}

// RecordVisitRequest carries one reported visit outcome.
type RecordVisitRequest struct {
	ZoneID       uuid.UUID `json:"zone_id"`
	BuildingKey  string    `json:"building_key"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	ContactName  string    `json:"contact_name"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	UpdatedBy    string    `json:"-"`
}

// RecordVisit overwrites the status entry for one building. The building
// must exist in the zone's current index; last write wins.
func (e *Engine) RecordVisit(ctx context.Context, req RecordVisitRequest) (*CanvassingStatusEntry, error) {
	if _, ok := visitStatuses[req.Status]; !ok {
		return nil, &InvalidVisitStatusError{Status: req.Status}
	}

	z, err := e.store.GetZone(ctx, req.ZoneID)
	if err != nil {
		return nil, err
	}
	key := BuildingKey(req.BuildingKey, "")
	if _, ok := buildingKeys(z)[key]; !ok {
		return nil, &UnknownBuildingError{ZoneID: req.ZoneID, BuildingKey: req.BuildingKey}
	}

	unlock := e.visitLocks.Lock(req.ZoneID.String() + "|" + key)
	defer unlock()

	now := e.now()
	entry := &CanvassingStatusEntry{
		ZoneID:       req.ZoneID,
		BuildingKey:  key,
		Status:       req.Status,
		Notes:        req.Notes,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		LastVisited:  &now,
		UpdatedBy:    req.UpdatedBy,
		UpdatedAt:    now,
	}
	if err := e.store.UpsertStatusEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("record visit: %w", err)
	}
	return entry, nil
}

// ZoneSummary is the read-side aggregation for one zone: visit counts by
// status, the currently responsible subject, and house-number statistics.
type ZoneSummary struct {
	ZoneID        uuid.UUID        `json:"zone_id"`
	Name          string           `json:"name"`
	Status        ZoneStatus       `json:"status"`
	VisitCounts   map[string]int   `json:"visit_counts"`
	ActiveAgentID *string          `json:"active_agent_id,omitempty"`
	ActiveTeamID  *string          `json:"active_team_id,omitempty"`
	HouseNumbers  HouseNumberStats `json:"house_numbers"`
}

func (e *Engine) GetZoneSummary(ctx context.Context, zoneID uuid.UUID) (*ZoneSummary, error) {
	z, err := e.store.GetZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	entries, err := e.store.StatusEntries(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(visitStatuses))
	for status := range visitStatuses {
		counts[status] = 0
	}
	for _, entry := range entries {
		counts[entry.Status]++
	}
	// Buildings nobody has reported on yet count as not-visited.
	if unseen := z.TotalBuildings - len(entries); unseen > 0 {
		counts[VisitNotVisited] += unseen
	}

	summary := &ZoneSummary{
		ZoneID:       z.ID,
		Name:         z.Name,
		Status:       z.Status,
		VisitCounts:  counts,
		HouseNumbers: GetHouseNumberStats(z.OddHouseNumbers, z.EvenHouseNumbers),
	}

	open, err := e.store.OpenAssignments(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	for i := range open {
		if open[i].activeEquivalent(now) {
			summary.ActiveAgentID = open[i].AgentID
			summary.ActiveTeamID = open[i].TeamID
			break
		}
	}
	return summary, nil
}
