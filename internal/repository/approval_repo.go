package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRepository interface {
	Create(ctx context.Context, req *model.ApprovalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	FindPendingByProjectAndType(ctx context.Context, projectID uuid.UUID, requestType string) (*model.ApprovalRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.ApprovalRequest, int64, error)
	ListByRequester(ctx context.Context, requestedBy uuid.UUID) ([]model.ApprovalRequest, error)
	Update(ctx context.Context, req *model.ApprovalRequest) error
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *approvalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) FindByIDWithProject(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	if err := GetDB(ctx, r.db).Preload("Project").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPendingByProjectAndType backs the at-most-one-Pending check. Returns
// (nil, nil) when no pending request exists.
func (r *approvalRepository) FindPendingByProjectAndType(ctx context.Context, projectID uuid.UUID, requestType string) (*model.ApprovalRequest, error) {
	var req model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Where("project_id = ? AND request_type = ? AND status = ?", projectID, requestType, model.ApprovalPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *approvalRepository) List(ctx context.Context, status string, page, limit int) ([]model.ApprovalRequest, int64, error) {
	var requests []model.ApprovalRequest
	var total int64

	db := GetDB(ctx, r.db)
	countQuery := db.Model(&model.ApprovalRequest{})
	if status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Project")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("requested_utc DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *approvalRepository) ListByRequester(ctx context.Context, requestedBy uuid.UUID) ([]model.ApprovalRequest, error) {
	var requests []model.ApprovalRequest
	err := GetDB(ctx, r.db).
		Preload("Project").
		Where("requested_by = ?", requestedBy).
		Order("requested_utc DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *approvalRepository) Update(ctx context.Context, req *model.ApprovalRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
