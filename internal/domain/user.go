package domain

import "time"

// Role of a registered user.
type Role string

const (
	RoleSentinel Role = "sentinel"
	RoleBHW      Role = "bhw"
	RoleAdmin    Role = "admin"
)

// UserStatus registration approval state.
type UserStatus string

const (
	UserPending  UserStatus = "pending"
	UserApproved UserStatus = "approved"
	UserRejected UserStatus = "rejected"
)

// User a registered resident, BHW or admin (users table).
type User struct {
	ID          string     `json:"id" db:"user_id"`
	Email       string     `json:"email" db:"email"`
	PhoneNumber string     `json:"phoneNumber" db:"phone_number"`
	DisplayName string     `json:"displayName" db:"display_name"`
	Role        Role       `json:"role" db:"role"`
	Barangay    string     `json:"barangay" db:"barangay"`
	Purok       string     `json:"purok" db:"purok"`
	Status      UserStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}
