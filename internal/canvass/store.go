package canvass

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence boundary for the canvass engine. The production
// implementation is gorm/postgres; tests swap in an in-memory fake, the same
// way the session middleware is tested against a mock fetcher.
type Store interface {
	CreateZone(ctx context.Context, z *Zone) error
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
	UpdateZone(ctx context.Context, z *Zone) error

	GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentRecord, error)
	OpenAssignments(ctx context.Context, zoneID uuid.UUID) ([]AssignmentRecord, error)
	// CreateAssignment persists rec, closing supersede in the same
	// transaction when it is non-nil.
	CreateAssignment(ctx context.Context, supersede, rec *AssignmentRecord) error
	UpdateAssignment(ctx context.Context, rec *AssignmentRecord) error

	CreateScheduled(ctx context.Context, s *ScheduledAssignment) error
	GetScheduled(ctx context.Context, id uuid.UUID) (*ScheduledAssignment, error)
	UpdateScheduled(ctx context.Context, s *ScheduledAssignment) error
	DueScheduled(ctx context.Context, now time.Time) ([]ScheduledAssignment, error)
	// ActivateScheduled compare-and-sets the scheduled row from its prior
	// status to ACTIVATED and creates rec (closing supersede when non-nil)
	// in one transaction. Returns false without side effects when another
	// sweep or caller already claimed the row.
	ActivateScheduled(ctx context.Context, sched *ScheduledAssignment, from ScheduleStatus, supersede, rec *AssignmentRecord) (bool, error)

	UpsertStatusEntry(ctx context.Context, e *CanvassingStatusEntry) error
	StatusEntries(ctx context.Context, zoneID uuid.UUID) ([]CanvassingStatusEntry, error)
}

// gormStore backs the engine with the shared gorm connection.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection in the Store interface.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CreateZone(ctx context.Context, z *Zone) error {
	return s.db.WithContext(ctx).Create(z).Error
}

func (s *gormStore) GetZone(ctx context.Context, id uuid.UUID) (*Zone, error) {
	var z Zone
	err := s.db.WithContext(ctx).First(&z, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &UnknownZoneError{ZoneID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load zone: %w", err)
	}
	return &z, nil
}

func (s *gormStore) UpdateZone(ctx context.Context, z *Zone) error {
	return s.db.WithContext(ctx).Save(z).Error
}

func (s *gormStore) GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentRecord, error) {
	var rec AssignmentRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &UnknownRecordError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	return &rec, nil
}

func (s *gormStore) OpenAssignments(ctx context.Context, zoneID uuid.UUID) ([]AssignmentRecord, error) {
	var recs []AssignmentRecord
	err := s.db.WithContext(ctx).
		Where("zone_id = ? AND status NOT IN ?", zoneID,
			[]AssignmentStatus{AssignmentCompleted, AssignmentCancelled}).
		Order("effective_from").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list open assignments: %w", err)
	}
	return recs, nil
}

func (s *gormStore) CreateAssignment(ctx context.Context, supersede, rec *AssignmentRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if supersede != nil {
			if err := tx.Save(supersede).Error; err != nil {
				return fmt.Errorf("close superseded assignment: %w", err)
			}
		}
		return tx.Create(rec).Error
	})
}

func (s *gormStore) UpdateAssignment(ctx context.Context, rec *AssignmentRecord) error {
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *gormStore) CreateScheduled(ctx context.Context, sched *ScheduledAssignment) error {
	return s.db.WithContext(ctx).Create(sched).Error
}

func (s *gormStore) GetScheduled(ctx context.Context, id uuid.UUID) (*ScheduledAssignment, error) {
	var sched ScheduledAssignment
	err := s.db.WithContext(ctx).First(&sched, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &UnknownRecordError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load scheduled assignment: %w", err)
	}
	return &sched, nil
}

func (s *gormStore) UpdateScheduled(ctx context.Context, sched *ScheduledAssignment) error {
	return s.db.WithContext(ctx).Save(sched).Error
}

func (s *gormStore) DueScheduled(ctx context.Context, now time.Time) ([]ScheduledAssignment, error) {
	var due []ScheduledAssignment
	err := s.db.WithContext(ctx).
		Where("scheduled_date <= ? AND status IN ?", now,
			[]ScheduleStatus{SchedulePending, ScheduleScheduled}).
		Order("scheduled_date").
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("list due scheduled assignments: %w", err)
	}
	return due, nil
}

func (s *gormStore) ActivateScheduled(ctx context.Context, sched *ScheduledAssignment, from ScheduleStatus, supersede, rec *AssignmentRecord) (bool, error) {
	claimed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ScheduledAssignment{}).
			Where("id = ? AND status = ?", sched.ID, from).
			Updates(map[string]interface{}{
				"status":               ScheduleActivated,
				"assignment_record_id": rec.ID,
				"notification_sent":    false,
			})
		if res.Error != nil {
			return fmt.Errorf("claim scheduled assignment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Someone else claimed it; nothing to do.
			return nil
		}
		claimed = true
		if supersede != nil {
			if err := tx.Save(supersede).Error; err != nil {
				return fmt.Errorf("close superseded assignment: %w", err)
			}
		}
		return tx.Create(rec).Error
	})
	return claimed, err
}

func (s *gormStore) UpsertStatusEntry(ctx context.Context, e *CanvassingStatusEntry) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *gormStore) StatusEntries(ctx context.Context, zoneID uuid.UUID) ([]CanvassingStatusEntry, error) {
	var entries []CanvassingStatusEntry
	err := s.db.WithContext(ctx).Where("zone_id = ?", zoneID).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list status entries: %w", err)
	}
	return entries, nil
}
