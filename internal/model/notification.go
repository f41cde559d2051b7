package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enum constants
const (
	NotificationInfo    = "Info"
	NotificationWarning = "Warning"
	NotificationError   = "Error"
)

// ValidNotificationType reports whether the string names a known type.
func ValidNotificationType(notificationType string) bool {
	return notificationType == NotificationInfo ||
		notificationType == NotificationWarning ||
		notificationType == NotificationError
}

// Notification is a message emitted by a caller after an engine operation.
// SupplierID narrows visibility to one supplier; empty means broadcast.
type Notification struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID        uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	SupplierID       string    `gorm:"type:varchar(100);index" json:"supplierId"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	NotificationType string    `gorm:"type:varchar(20);not null" json:"notificationType"`
	IsRead           bool      `gorm:"not null;default:false" json:"isRead"`
	CreatedUTC       time.Time `gorm:"autoCreateTime;index" json:"createdUtc"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
