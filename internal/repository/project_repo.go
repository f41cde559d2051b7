package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, page, limit int) ([]model.Project, int64, error)
	ListWithRecords(ctx context.Context, partNo, lotNo string) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, page, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_utc DESC").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// ListWithRecords preloads measurement records for the inspection view,
// optionally narrowed by part and lot number.
func (r *projectRepository) ListWithRecords(ctx context.Context, partNo, lotNo string) ([]model.Project, error) {
	query := GetDB(ctx, r.db).Preload("Records", func(db *gorm.DB) *gorm.DB {
		return db.Order("measure_no ASC")
	})
	if partNo != "" {
		query = query.Where("part_no = ?", partNo)
	}
	if lotNo != "" {
		query = query.Where("lot_no = ?", lotNo)
	}

	var projects []model.Project
	if err := query.Order("created_utc DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}
