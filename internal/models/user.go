package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleManager          UserRole = "MANAGER"
	RoleHRAdmin          UserRole = "HR_ADMIN"
	RoleTrainer          UserRole = "TRAINER"
	RoleCounselor        UserRole = "COUNSELOR"
	RolePlacementOfficer UserRole = "PLACEMENT_OFFICER"
)

// Valid returns true when the role is a supported value.
func (r UserRole) Valid() bool {
	switch r {
	case RoleManager, RoleHRAdmin, RoleTrainer, RoleCounselor, RolePlacementOfficer:
		return true
	default:
		return false
	}
}

// Capability identifies a navigable application section.
type Capability string

const (
	CapabilityDashboard  Capability = "dashboard"
	CapabilityInquiries  Capability = "inquiries"
	CapabilityAdmissions Capability = "admissions"
	CapabilityStudents   Capability = "students"
	CapabilityBatches    Capability = "batches"
	CapabilityFees       Capability = "fees"
	CapabilityAttendance Capability = "attendance"
	CapabilityOutreach   Capability = "outreach"
	CapabilityUsers      Capability = "users"
)

// roleCapabilities is the declarative role -> sections table. Access
// decisions derive from this table rather than scattered role checks.
var roleCapabilities = map[UserRole][]Capability{
	RoleManager: {
		CapabilityDashboard, CapabilityInquiries, CapabilityAdmissions,
		CapabilityStudents, CapabilityBatches, CapabilityFees,
		CapabilityAttendance, CapabilityOutreach, CapabilityUsers,
	},
	RoleHRAdmin: {
		CapabilityDashboard, CapabilityInquiries, CapabilityAdmissions,
		CapabilityStudents, CapabilityBatches, CapabilityFees, CapabilityUsers,
	},
	RoleTrainer: {
		CapabilityDashboard, CapabilityBatches, CapabilityAttendance,
	},
	RoleCounselor: {
		CapabilityDashboard, CapabilityInquiries,
	},
	RolePlacementOfficer: {
		CapabilityDashboard, CapabilityOutreach,
	},
}

// Capabilities returns the sections visible to the role.
func (r UserRole) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Can reports whether the role may access the given section.
func (r UserRole) Can(c Capability) bool {
	for _, cap := range roleCapabilities[r] {
		if cap == c {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	Phone        string    `db:"phone" json:"phone"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
