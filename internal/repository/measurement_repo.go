package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MeasurementRepository interface {
	CreateBatch(ctx context.Context, records []model.MeasurementRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MeasurementRecord, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.MeasurementRecord, error)
	Update(ctx context.Context, record *model.MeasurementRecord) error
}

type measurementRepository struct {
	db *gorm.DB
}

func NewMeasurementRepository(db *gorm.DB) MeasurementRepository {
	return &measurementRepository{db: db}
}

func (r *measurementRepository) CreateBatch(ctx context.Context, records []model.MeasurementRecord) error {
	if len(records) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&records).Error
}

func (r *measurementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MeasurementRecord, error) {
	var record model.MeasurementRecord
	if err := GetDB(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *measurementRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.MeasurementRecord, error) {
	var records []model.MeasurementRecord
	if err := GetDB(ctx, r.db).Where("project_id = ?", projectID).Order("measure_no ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *measurementRepository) Update(ctx context.Context, record *model.MeasurementRecord) error {
	return GetDB(ctx, r.db).Save(record).Error
}
