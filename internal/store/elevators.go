package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/schedule"
)

// ElevatorByQRCode resolves a scanned QR token to an elevator, schedules
// included.
func (s *gormStore) ElevatorByQRCode(ctx context.Context, qrToken string) (*model.Elevator, error) {
	var elevator model.Elevator
	err := s.db.WithContext(ctx).
		Preload("Schedules").
		Where("qr_code_data = ?", qrToken).
		First(&elevator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrElevatorNotFound
		}
		return nil, fmt.Errorf("failed to look up elevator by qr code: %w", err)
	}
	return &elevator, nil
}

// DueElevators returns every elevator whose schedule matches the given
// month, annotated with the matched schedule date and whether a maintenance
// record for that month already exists.
func (s *gormStore) DueElevators(ctx context.Context, month schedule.YearMonth) ([]DueElevator, error) {
	var elevators []model.Elevator
	if err := s.db.WithContext(ctx).Preload("Schedules").Find(&elevators).Error; err != nil {
		return nil, fmt.Errorf("failed to list elevators: %w", err)
	}

	var maintainedIDs []int64
	err := s.db.WithContext(ctx).
		Model(&model.MaintenanceRecord{}).
		Where("year = ? AND month = ?", month.Year, int(month.Month)).
		Pluck("elevator_id", &maintainedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list maintained elevators: %w", err)
	}
	maintained := make(map[int64]bool, len(maintainedIDs))
	for _, id := range maintainedIDs {
		maintained[id] = true
	}

	due := make([]DueElevator, 0)
	for _, elevator := range elevators {
		entry, ok := schedule.Match(scheduleEntries(elevator.Schedules), month)
		if !ok {
			continue
		}
		due = append(due, DueElevator{
			Elevator:     elevator,
			ScheduleDate: entry.Date.Start(),
			Maintained:   maintained[elevator.ID],
		})
	}
	return due, nil
}

// scheduleEntries converts stored schedule rows into matcher entries.
func scheduleEntries(schedules []model.MaintenanceSchedule) []schedule.Entry {
	entries := make([]schedule.Entry, len(schedules))
	for i, sch := range schedules {
		entries[i] = schedule.Entry{
			Date:         schedule.MonthOf(sch.Date),
			RepeatMonths: sch.RepeatMonths,
		}
	}
	return entries
}
