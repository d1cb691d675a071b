package store

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers, which map them onto HTTP statuses.
var (
	ErrElevatorNotFound = errors.New("elevator not found")
	ErrRecordNotFound   = errors.New("maintenance record not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNotScheduled     = errors.New("no maintenance scheduled for this elevator this month")
	ErrForbidden        = errors.New("not allowed to modify this record")
)

// AlreadyLoggedError rejects a scan of an elevator that was already serviced
// in the current month. It carries the name of the technician who logged the
// existing record for the user-facing message.
type AlreadyLoggedError struct {
	TechnicianName string
}

func (e *AlreadyLoggedError) Error() string {
	name := e.TechnicianName
	if name == "" {
		name = "another technician"
	}
	return fmt.Sprintf("elevator already maintained this month by %s", name)
}
