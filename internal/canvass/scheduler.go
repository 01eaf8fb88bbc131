package canvass

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// ActivationEvent is handed to the notification collaborator after a
// scheduled assignment activates.
type ActivationEvent struct {
	ScheduledAssignmentID uuid.UUID `json:"scheduled_assignment_id"`
	ZoneID                uuid.UUID `json:"zone_id"`
	AgentID               *string   `json:"agent_id,omitempty"`
	TeamID                *string   `json:"team_id,omitempty"`
}

// Dispatcher delivers activation events. Delivery is confirmed by a nil
// return; the scheduled row's notification_sent flag is only set then, so an
// undelivered event is retried by a later sweep.
type Dispatcher interface {
	DispatchActivation(ctx context.Context, ev ActivationEvent) error
}

// LogDispatcher writes activation events to the process log. It stands in
// for the external email/SMS dispatcher in dev and in one-shot sweeps.
type LogDispatcher struct{}

func (LogDispatcher) DispatchActivation(_ context.Context, ev ActivationEvent) error {
	agent, team := subjectOf(ev.AgentID, ev.TeamID)
	log.Printf("[scheduler] activation: scheduled=%s zone=%s agent=%q team=%q",
		ev.ScheduledAssignmentID, ev.ZoneID, agent, team)
	return nil
}

// ScheduleAssignmentRequest carries a future-dated assignment intent.
type ScheduleAssignmentRequest struct {
	ZoneID        uuid.UUID  `json:"zone_id"`
	AgentID       string     `json:"agent_id"`
	TeamID        string     `json:"team_id"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to"`
	AssignedBy    string     `json:"-"`
}

// ScheduleAssignment records an intent to assign once ScheduledDate arrives.
// The date must not be in the past relative to creation time.
func (e *Engine) ScheduleAssignment(ctx context.Context, req ScheduleAssignmentRequest) (*ScheduledAssignment, error) {
	agent, team, err := validateSubject(req.AgentID, req.TeamID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if req.ScheduledDate.Before(now) {
		return nil, &PastScheduleError{ScheduledDate: req.ScheduledDate}
	}
	if _, err := e.store.GetZone(ctx, req.ZoneID); err != nil {
		return nil, err
	}

	from := req.EffectiveFrom
	if from.IsZero() {
		from = req.ScheduledDate
	}
	sched := &ScheduledAssignment{
		ID:            uuid.New(),
		ZoneID:        req.ZoneID,
		AgentID:       agent,
		TeamID:        team,
		ScheduledDate: req.ScheduledDate,
		EffectiveFrom: from,
		EffectiveTo:   req.EffectiveTo,
		Status:        SchedulePending,
		AssignedBy:    req.AssignedBy,
	}
	if err := e.store.CreateScheduled(ctx, sched); err != nil {
		return nil, fmt.Errorf("schedule assignment: %w", err)
	}
	return sched, nil
}

// CancelScheduledAssignment withdraws a pending intent. Terminal statuses
// are left untouched.
func (e *Engine) CancelScheduledAssignment(ctx context.Context, id uuid.UUID) (*ScheduledAssignment, error) {
	sched, err := e.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := e.zoneLocks.Lock(sched.ZoneID.String())
	defer unlock()

	sched, err = e.store.GetScheduled(ctx, id)
	if err != nil {
		return nil, err
	}
	switch sched.Status {
	case SchedulePending, ScheduleScheduled:
		sched.Status = ScheduleCancelled
		if err := e.store.UpdateScheduled(ctx, sched); err != nil {
			return nil, fmt.Errorf("cancel scheduled assignment: %w", err)
		}
	}
	return sched, nil
}

// SweepReport summarizes one scheduler pass.
type SweepReport struct {
	Due       int         `json:"due"`
	Activated []uuid.UUID `json:"activated"`
	Conflicts []uuid.UUID `json:"conflicts"`
}

// RunSweep promotes every due PENDING/SCHEDULED intent whose window clears
// the conflict check. Activation is a compare-and-set on the row's status,
// so re-running the sweep never activates the same intent twice. Intents
// blocked by a conflict stay PENDING and are retried on the next pass.
func (e *Engine) RunSweep(ctx context.Context) (SweepReport, error) {
	now := e.now()
	due, err := e.store.DueScheduled(ctx, now)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Due: len(due)}
	for i := range due {
		sched := &due[i]
		activated, err := e.activateOne(ctx, sched)
		if err != nil {
			var conflict *OverlapConflictError
			if errors.As(err, &conflict) {
				log.Printf("[scheduler] conflict for scheduled=%s zone=%s: %v; will retry",
					sched.ID, sched.ZoneID, err)
				report.Conflicts = append(report.Conflicts, sched.ID)
				continue
			}
			return report, fmt.Errorf("activate scheduled %s: %w", sched.ID, err)
		}
		if activated {
			report.Activated = append(report.Activated, sched.ID)
		}
	}
	return report, nil
}

func (e *Engine) activateOne(ctx context.Context, sched *ScheduledAssignment) (bool, error) {
	unlock := e.zoneLocks.Lock(sched.ZoneID.String())
	defer unlock()

	open, err := e.store.OpenAssignments(ctx, sched.ZoneID)
	if err != nil {
		return false, err
	}
	sup, err := CheckAndReserve(open, sched.EffectiveFrom, sched.EffectiveTo)
	if err != nil {
		return false, err
	}

	rec := &AssignmentRecord{
		ID:            uuid.New(),
		ZoneID:        sched.ZoneID,
		AgentID:       sched.AgentID,
		TeamID:        sched.TeamID,
		EffectiveFrom: sched.EffectiveFrom,
		EffectiveTo:   sched.EffectiveTo,
		Status:        AssignmentActive,
		AssignedBy:    sched.AssignedBy,
	}
	var prior *AssignmentRecord
	if sup != nil {
		prior = sup.Prior
		closeAt := sup.CloseAt
		prior.EffectiveTo = &closeAt
		prior.Status = sup.NewStatus
	}

	claimed, err := e.store.ActivateScheduled(ctx, sched, sched.Status, prior, rec)
	if err != nil || !claimed {
		return false, err
	}

	ev := ActivationEvent{
		ScheduledAssignmentID: sched.ID,
		ZoneID:                sched.ZoneID,
		AgentID:               sched.AgentID,
		TeamID:                sched.TeamID,
	}
	if err := e.dispatcher.DispatchActivation(ctx, ev); err != nil {
		// The intent is activated either way; delivery is retried elsewhere.
		log.Printf("[scheduler] dispatch failed for scheduled=%s: %v", sched.ID, err)
		return true, nil
	}
	sched.Status = ScheduleActivated
	sched.AssignmentRecordID = &rec.ID
	sched.NotificationSent = true
	if err := e.store.UpdateScheduled(ctx, sched); err != nil {
		return true, fmt.Errorf("mark notification sent: %w", err)
	}
	return true, nil
}

// StartSweeper runs RunSweep on a fixed interval until ctx is cancelled.
// Intended to be launched as a goroutine from main.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[scheduler] sweeper running every %s", interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[scheduler] sweeper stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			report, err := e.RunSweep(ctx)
			if err != nil {
				log.Printf("[scheduler] sweep error: %v", err)
				continue
			}
			if report.Due > 0 {
				log.Printf("[scheduler] sweep: due=%d activated=%d conflicts=%d",
					report.Due, len(report.Activated), len(report.Conflicts))
			}
		}
	}
}
