package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MeasurementRecord is a single measured value imported for a project.
// Records are created by the import trigger and never deleted; the only
// mutation is setting a manual judgment.
type MeasurementRecord struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"projectId"`
	MeasureNo       int             `gorm:"not null" json:"measureNo"`
	SupplierID      string          `gorm:"type:varchar(100);index" json:"supplierId"`
	Value           decimal.Decimal `gorm:"type:numeric(18,6);not null" json:"value"`
	ManualJudgment  *bool           `json:"manualJudgment"`
	JudgmentComment *string         `gorm:"type:text" json:"judgmentComment"`
	CreatedUTC      time.Time       `gorm:"autoCreateTime" json:"createdUtc"`
	UpdatedUTC      time.Time       `gorm:"autoUpdateTime" json:"updatedUtc"`
}

func (r *MeasurementRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// JudgmentResult is the pass/fail outcome for a record, with the manual
// override flagged so reports can tell operator intervention apart from the
// automatic tolerance check.
type JudgmentResult struct {
	IsOK     bool    `json:"isOk"`
	IsManual bool    `json:"isManual"`
	Comment  *string `json:"comment"`
}

// FinalJudgment computes the effective judgment for a record. A manual
// judgment wins unconditionally; otherwise the value passes when
// tolLower <= value <= tolUpper, both bounds inclusive.
func FinalJudgment(record *MeasurementRecord, project *Project) JudgmentResult {
	if record.ManualJudgment != nil {
		return JudgmentResult{
			IsOK:     *record.ManualJudgment,
			IsManual: true,
			Comment:  record.JudgmentComment,
		}
	}

	ok := record.Value.GreaterThanOrEqual(project.TolLower) &&
		record.Value.LessThanOrEqual(project.TolUpper)
	return JudgmentResult{IsOK: ok}
}
