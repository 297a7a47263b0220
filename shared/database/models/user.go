package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of Ultra BMS roles. Unknown role names never parse;
// they must not fall through to a permissive default.
type Role string

const (
	RoleAdmin                 Role = "ADMIN"
	RolePropertyManager       Role = "PROPERTY_MANAGER"
	RoleAccountant            Role = "ACCOUNTANT"
	RoleMaintenanceSupervisor Role = "MAINTENANCE_SUPERVISOR"
	RoleTenant                Role = "TENANT"
	RoleVendor                Role = "VENDOR"
)

// AllRoles lists every defined role, used by seeding and validation
var AllRoles = []Role{
	RoleAdmin,
	RolePropertyManager,
	RoleAccountant,
	RoleMaintenanceSupervisor,
	RoleTenant,
	RoleVendor,
}

// ParseRole converts a role name into a Role, rejecting unknown names
func ParseRole(name string) (Role, error) {
	for _, role := range AllRoles {
		if string(role) == name {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", name)
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FirstName string    `json:"first_name" gorm:"size:100"`
	LastName  string    `json:"last_name" gorm:"size:100"`
	Phone     string    `json:"phone" gorm:"size:20"`
	Role      Role      `json:"role" gorm:"size:50;not null"`
	Status    string    `json:"status" gorm:"default:'ACTIVE'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key so inserts work on any SQL backend
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
