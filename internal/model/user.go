package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants. Roles are fixed — there is no role editor — so the
// capability check is a plain allow-list at the route layer.
const (
	RoleInternal = "internal"
	RoleSupplier = "supplier"
	RoleManager  = "manager"
)

// ValidRole reports whether the string names a known role.
func ValidRole(role string) bool {
	return role == RoleInternal || role == RoleSupplier || role == RoleManager
}

// User represents an authenticated caller. Supplier users carry the external
// supplier id their measurement records are keyed by.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"`
	Role       string         `gorm:"type:varchar(50);not null" json:"role"`
	SupplierID string         `gorm:"type:varchar(100);index" json:"supplierId"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
