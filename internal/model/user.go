package model

import "time"

// Role restricts what a user may do. Admins manage elevators and users;
// technicians log maintenance visits.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTech  Role = "tech"
)

// IsValidRole reports whether r is a recognized role.
func IsValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleTech
}

// User is an account. Email is stored lower-cased so uniqueness is
// case-insensitive. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
