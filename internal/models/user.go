package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a user on the platform
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleSuperadmin UserRole = "superadmin"
)

// Position is a geographic coordinate pair resolved from an address
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Preferences holds per-user notification toggles
type Preferences struct {
	Newsletter bool `json:"newsletter"`
	SMSAlerts  bool `json:"smsAlerts"`
}

// User represents a user in the system. Admin users own at most one pharmacy,
// referenced by PharmacyID.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Firstname string   `gorm:"type:varchar(255)" json:"firstname"`
	Lastname  string   `gorm:"type:varchar(255)" json:"lastname"`
	FullName  string   `gorm:"type:varchar(255)" json:"fullName"`
	Email     string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Role      UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	Phone   string `gorm:"type:varchar(50)" json:"phone"`
	DOB     string `gorm:"type:varchar(20)" json:"dob"`
	Joined  string `gorm:"type:varchar(20)" json:"joined"`
	Avatar  string `gorm:"type:varchar(255);default:'uploads/avatar.webp'" json:"avatar"`
	Address string `gorm:"type:text" json:"address"`

	Position *Position `gorm:"serializer:json" json:"position,omitempty"`

	// License is only set for admins; it is required to own a pharmacy.
	License *string `gorm:"type:varchar(100)" json:"license,omitempty"`

	// Back-reference to the pharmacy this admin manages.
	PharmacyID *uint `json:"pharmacyId,omitempty"`

	Preferences Preferences `gorm:"serializer:json" json:"preferences"`
}

// UserPatch carries only the fields a caller intends to change. Nil means
// "field omitted", which the synchronizer must distinguish from "field cleared".
type UserPatch struct {
	Firstname *string   `json:"firstname"`
	Lastname  *string   `json:"lastname"`
	Email     *string   `json:"email"`
	Role      *UserRole `json:"role"`
	Phone     *string   `json:"phone"`
	DOB       *string   `json:"dob"`
	Address   *string   `json:"address"`
	Position  *Position `json:"position"`
	License   *string   `json:"license"`
}

// Apply copies the present fields onto the user and refreshes FullName when
// either name component changed.
func (p UserPatch) Apply(u *User) {
	if p.Firstname != nil {
		u.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		u.Lastname = *p.Lastname
	}
	if p.Firstname != nil || p.Lastname != nil {
		u.FullName = strings.TrimSpace(u.Firstname + " " + u.Lastname)
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.DOB != nil {
		u.DOB = *p.DOB
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Position != nil {
		u.Position = p.Position
	}
	if p.License != nil {
		u.License = p.License
	}
}
