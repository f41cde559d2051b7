package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, page, limit int) ([]model.Notification, int64, error)
	ListForSupplier(ctx context.Context, supplierID string, page, limit int) ([]model.Notification, int64, error)
	Update(ctx context.Context, notification *model.Notification) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	var notification model.Notification
	if err := GetDB(ctx, r.db).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) List(ctx context.Context, page, limit int) ([]model.Notification, int64, error) {
	return r.list(ctx, GetDB(ctx, r.db).Model(&model.Notification{}), page, limit)
}

// ListForSupplier returns the supplier's own notifications plus broadcasts
// (rows with no supplier id).
func (r *notificationRepository) ListForSupplier(ctx context.Context, supplierID string, page, limit int) ([]model.Notification, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Notification{}).
		Where("supplier_id = ? OR supplier_id = ''", supplierID)
	return r.list(ctx, query, page, limit)
}

func (r *notificationRepository) list(ctx context.Context, query *gorm.DB, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_utc DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Save(notification).Error
}
