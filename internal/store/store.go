package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"elevator-maintenance-backend/internal/model"
	"elevator-maintenance-backend/internal/schedule"
)

// Caller identifies the authenticated user a store operation runs on behalf
// of, as established by the auth middleware.
type Caller struct {
	UserID int64
	Role   model.Role
}

// IsAdmin reports whether the caller has the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// RecordFilter narrows ListRecords. Nil fields are ignored.
type RecordFilter struct {
	UserID     *int64
	ElevatorID *int64
	Month      *schedule.YearMonth
}

// DueElevator is an elevator that is due in a queried month, annotated with
// the schedule date that matched and whether a record already exists.
type DueElevator struct {
	model.Elevator
	ScheduleDate time.Time `json:"scheduleDate"`
	Maintained   bool      `json:"maintained"`
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ElevatorByQRCode(ctx context.Context, qrToken string) (*model.Elevator, error)
	DueElevators(ctx context.Context, month schedule.YearMonth) ([]DueElevator, error)

	FindExistingRecord(ctx context.Context, elevatorID int64, month schedule.YearMonth) (*model.MaintenanceRecord, error)
	LogMaintenance(ctx context.Context, qrToken string, technicianID int64, now time.Time) (*model.MaintenanceRecord, error)
	AppendAttachments(ctx context.Context, recordID int64, caller Caller, files []model.Attachment, needsRepair *bool) (*model.MaintenanceRecord, error)
	ListRecords(ctx context.Context, f RecordFilter) ([]model.MaintenanceRecord, error)

	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for handlers doing plain CRUD.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
