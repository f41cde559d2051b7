package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus enum constants
const (
	ProjectStatusDraft           = "Draft"
	ProjectStatusPendingApproval = "PendingApproval"
	ProjectStatusActive          = "Active"
	ProjectStatusLocked          = "Locked"
	ProjectStatusFixed           = "Fixed"
)

// ProjectEvent identifies a lifecycle event applied to a project.
type ProjectEvent string

const (
	EventRequestCreation    ProjectEvent = "RequestCreation"
	EventCreationApproved   ProjectEvent = "CreationApproved"
	EventCreationRejected   ProjectEvent = "CreationRejected"
	EventImportMeasurements ProjectEvent = "ImportMeasurements"
	EventRequestCompletion  ProjectEvent = "RequestCompletion"
	EventCompletionApproved ProjectEvent = "CompletionApproved"
	EventCompletionRejected ProjectEvent = "CompletionRejected"
)

// projectTransitions is the full lifecycle table. Every (status, event) pair
// not listed here is invalid; Fixed has no outgoing transitions.
var projectTransitions = map[string]map[ProjectEvent]string{
	ProjectStatusDraft: {
		EventRequestCreation:    ProjectStatusPendingApproval,
		EventImportMeasurements: ProjectStatusLocked,
	},
	ProjectStatusPendingApproval: {
		EventRequestCreation:  ProjectStatusPendingApproval,
		EventCreationApproved: ProjectStatusActive,
		EventCreationRejected: ProjectStatusDraft,
	},
	ProjectStatusLocked: {
		EventRequestCompletion:  ProjectStatusLocked,
		EventCompletionApproved: ProjectStatusFixed,
		EventCompletionRejected: ProjectStatusLocked,
	},
}

// NextStatus resolves the transition table for a (status, event) pair.
// The second return value is false when the pair is not a defined transition.
func NextStatus(current string, event ProjectEvent) (string, bool) {
	events, ok := projectTransitions[current]
	if !ok {
		return "", false
	}
	next, ok := events[event]
	if !ok {
		return "", false
	}
	return next, true
}

// RequestEvents maps an approval request type to the events fired when the
// request is created, approved and rejected.
func RequestEvents(requestType string) (created, approved, rejected ProjectEvent, ok bool) {
	switch requestType {
	case RequestTypeProjectCreation:
		return EventRequestCreation, EventCreationApproved, EventCreationRejected, true
	case RequestTypeProjectCompletion:
		return EventRequestCompletion, EventCompletionApproved, EventCompletionRejected, true
	default:
		return "", "", "", false
	}
}

// Project is a part/lot inspection unit with tolerance bounds. Tolerances are
// stored as exact decimals so the inclusive boundary check never depends on
// binary float rounding.
type Project struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	PartNo      string              `gorm:"type:varchar(100);not null;index" json:"partNo"`
	LotNo       string              `gorm:"type:varchar(100);not null;index" json:"lotNo"`
	TolUpper    decimal.Decimal     `gorm:"type:numeric(18,6);not null" json:"tolUpper"`
	TolLower    decimal.Decimal     `gorm:"type:numeric(18,6);not null" json:"tolLower"`
	Status      string              `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`
	CreatedBy   *uuid.UUID          `gorm:"type:uuid;index" json:"createdBy"`
	Creator     *User               `gorm:"foreignKey:CreatedBy" json:"-"`
	CreatedUTC  time.Time           `gorm:"autoCreateTime" json:"createdUtc"`
	UpdatedUTC  time.Time           `gorm:"autoUpdateTime" json:"updatedUtc"`
	ApprovedUTC *time.Time          `json:"approvedUtc"`
	Records     []MeasurementRecord `gorm:"foreignKey:ProjectID" json:"records,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
