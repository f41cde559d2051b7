package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalRequestType enum constants
const (
	RequestTypeProjectCreation   = "ProjectCreation"
	RequestTypeProjectCompletion = "ProjectCompletion"
)

// ApprovalRequest status enum constants
const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// ApprovalRequest tracks a pending request to move a project across a gated
// status boundary. At most one Pending request may exist per
// (project, request type) pair; resolution is one-shot and never undone.
type ApprovalRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_approval_project_type" json:"projectId"`
	Project         *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	RequestType     string     `gorm:"type:varchar(30);not null;index:idx_approval_project_type" json:"requestType"`
	RequestComment  string     `gorm:"type:text;not null" json:"requestComment"`
	RequestedBy     uuid.UUID  `gorm:"type:uuid;not null;index" json:"requestedBy"`
	Requester       *User      `gorm:"foreignKey:RequestedBy" json:"-"`
	RequestedUTC    time.Time  `gorm:"autoCreateTime;index" json:"requestedUtc"`
	Status          string     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approvedBy"`
	Approver        *User      `gorm:"foreignKey:ApprovedBy" json:"-"`
	ApprovedUTC     *time.Time `json:"approvedUtc"`
	ApprovalComment string     `gorm:"type:text" json:"approvalComment"`
}

func (a *ApprovalRequest) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ValidRequestType reports whether the string names a known request type.
func ValidRequestType(requestType string) bool {
	return requestType == RequestTypeProjectCreation || requestType == RequestTypeProjectCompletion
}
