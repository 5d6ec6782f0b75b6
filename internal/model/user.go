package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleStaff   UserRole = "staff"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID             int64     `json:"id"`
	PublicID       uuid.UUID `json:"public_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	OfficeID       *int64    `json:"office_id,omitempty"`        // only set for staff/admin
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"` // linked chat for notifications
	CreatedAt      time.Time `json:"created_at"`
}

// IsOfficeRole reports whether the user acts on behalf of an office.
func (u *User) IsOfficeRole() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
