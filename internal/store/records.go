package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/schedule"
)

// FindExistingRecord returns the maintenance record of the given elevator
// whose timestamp falls inside the given month, or nil when there is none.
// Should more than one exist, the earliest is canonical.
func (s *gormStore) FindExistingRecord(ctx context.Context, elevatorID int64, month schedule.YearMonth) (*model.MaintenanceRecord, error) {
	start, end := month.Bounds()
	var record model.MaintenanceRecord
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("elevator_id = ? AND timestamp >= ? AND timestamp < ?", elevatorID, start, end).
		Order("timestamp asc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query records for elevator %d in %s: %w", elevatorID, month, err)
	}
	return &record, nil
}

// LogMaintenance records a technician's scan. The elevator must exist, be
// due in the current UTC month, and not have been serviced this month yet.
// The pre-insert lookup only produces the technician name for the rejection
// message; correctness under concurrent scans rests on the unique index over
// (elevator_id, year, month), so a lost race surfaces as ErrDuplicatedKey
// and is reported the same way.
func (s *gormStore) LogMaintenance(ctx context.Context, qrToken string, technicianID int64, now time.Time) (*model.MaintenanceRecord, error) {
	elevator, err := s.ElevatorByQRCode(ctx, qrToken)
	if err != nil {
		return nil, err
	}

	month := schedule.MonthOf(now)
	if !schedule.IsDue(scheduleEntries(elevator.Schedules), month) {
		return nil, ErrNotScheduled
	}

	if existing, err := s.FindExistingRecord(ctx, elevator.ID, month); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &AlreadyLoggedError{TechnicianName: existing.User.Name}
	}

	record := model.MaintenanceRecord{
		ElevatorID: elevator.ID,
		UserID:     technicianID,
		Timestamp:  now.UTC(),
		Year:       month.Year,
		Month:      int(month.Month),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lookupErr := s.FindExistingRecord(ctx, elevator.ID, month); lookupErr == nil && existing != nil {
				return nil, &AlreadyLoggedError{TechnicianName: existing.User.Name}
			}
			return nil, &AlreadyLoggedError{}
		}
		return nil, fmt.Errorf("failed to create maintenance record: %w", err)
	}

	return s.recordByID(ctx, record.ID)
}

// AppendAttachments adds uploaded files to an existing record and optionally
// overwrites its repair flag. Only the technician who logged the record or
// an admin may call it. The existing attachment list is never replaced; a
// nil needsRepair leaves the flag untouched.
func (s *gormStore) AppendAttachments(ctx context.Context, recordID int64, caller Caller, files []model.Attachment, needsRepair *bool) (*model.MaintenanceRecord, error) {
	var record model.MaintenanceRecord
	if err := s.db.WithContext(ctx).First(&record, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load record %d: %w", recordID, err)
	}

	if !caller.IsAdmin() && caller.UserID != record.UserID {
		return nil, ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(files) > 0 {
			for i := range files {
				files[i].ID = 0
				files[i].RecordID = record.ID
			}
			if err := tx.Create(&files).Error; err != nil {
				return fmt.Errorf("failed to append attachments to record %d: %w", record.ID, err)
			}
		}
		if needsRepair != nil && *needsRepair != record.NeedsRepair {
			if err := tx.Model(&record).Update("needs_repair", *needsRepair).Error; err != nil {
				return fmt.Errorf("failed to update repair flag on record %d: %w", record.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.recordByID(ctx, record.ID)
}

// ListRecords returns records matching the filter, newest first, with user,
// elevator and attachments populated.
func (s *gormStore) ListRecords(ctx context.Context, f RecordFilter) ([]model.MaintenanceRecord, error) {
	q := s.db.WithContext(ctx).
		Preload("User").
		Preload("Elevator").
		Preload("Attachments")

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ElevatorID != nil {
		q = q.Where("elevator_id = ?", *f.ElevatorID)
	}
	if f.Month != nil {
		start, end := f.Month.Bounds()
		q = q.Where("timestamp >= ? AND timestamp < ?", start, end)
	}

	var records []model.MaintenanceRecord
	if err := q.Order("timestamp desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

func (s *gormStore) recordByID(ctx context.Context, id int64) (*model.MaintenanceRecord, error) {
	var record model.MaintenanceRecord
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Elevator").
		Preload("Attachments").
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to reload record %d: %w", id, err)
	}
	return &record, nil
}
