package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateNotificationDTO struct {
	ProjectID        string `json:"projectId" binding:"required"`
	SupplierID       string `json:"supplierId"`
	Message          string `json:"message" binding:"required"`
	NotificationType string `json:"notificationType"`
}

type NotificationResponse struct {
	ID               string `json:"id"`
	ProjectID        string `json:"projectId"`
	SupplierID       string `json:"supplierId"`
	Message          string `json:"message"`
	NotificationType string `json:"notificationType"`
	IsRead           bool   `json:"isRead"`
	CreatedUTC       string `json:"createdUtc"`
}

// --- Interface ---

type NotificationService interface {
	CreateNotification(ctx context.Context, userID string, req CreateNotificationDTO) (NotificationResponse, error)
	ListNotifications(ctx context.Context, role, supplierID string, page, limit int) ([]NotificationResponse, int64, error)
	MarkAsRead(ctx context.Context, id string) (NotificationResponse, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	projectRepo      repository.ProjectRepository
	auditRepo        repository.AuditRepository
	txManager        repository.TransactionManager
	hub              *ws.Hub
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		projectRepo:      projectRepo,
		auditRepo:        auditRepo,
		txManager:        txManager,
		hub:              hub,
	}
}

// --- Implementation ---

func (s *notificationService) CreateNotification(ctx context.Context, userID string, req CreateNotificationDTO) (NotificationResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return NotificationResponse{}, apperror.Validation("message is required")
	}
	notificationType := req.NotificationType
	if notificationType == "" {
		notificationType = model.NotificationInfo
	}
	if !model.ValidNotificationType(notificationType) {
		return NotificationResponse{}, apperror.Validation("unknown notification type %q", notificationType)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return NotificationResponse{}, apperror.Validation("invalid project id")
	}

	notification := model.Notification{
		ProjectID:        projectID,
		SupplierID:       strings.TrimSpace(req.SupplierID),
		Message:          req.Message,
		NotificationType: notificationType,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.projectRepo.FindByID(txCtx, projectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}
		if err := s.notificationRepo.Create(txCtx, &notification); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return writeAuditLog(txCtx, s.auditRepo, userID, model.ActionCreateNotification,
			notification.ID.String(), notificationType, map[string]interface{}{
				"projectId":  projectID.String(),
				"supplierId": notification.SupplierID,
			})
	})
	if err != nil {
		return NotificationResponse{}, err
	}

	resp := toNotificationResponse(&notification)
	broadcastEvent(s.hub, "notification.created", resp)
	return resp, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, role, supplierID string, page, limit int) ([]NotificationResponse, int64, error) {
	params := pagination.New(page, limit)

	var notifications []model.Notification
	var total int64
	var err error
	if role == model.RoleSupplier {
		notifications, total, err = s.notificationRepo.ListForSupplier(ctx, supplierID, params.Page, params.Limit)
	} else {
		notifications, total, err = s.notificationRepo.List(ctx, params.Page, params.Limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	res := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		res = append(res, toNotificationResponse(&notifications[i]))
	}
	return res, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) (NotificationResponse, error) {
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return NotificationResponse{}, apperror.Validation("invalid notification id")
	}

	notification, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotificationResponse{}, apperror.NotFound("notification not found")
		}
		return NotificationResponse{}, fmt.Errorf("failed to load notification: %w", err)
	}

	if !notification.IsRead {
		notification.IsRead = true
		if err := s.notificationRepo.Update(ctx, notification); err != nil {
			return NotificationResponse{}, fmt.Errorf("failed to update notification: %w", err)
		}
	}

	return toNotificationResponse(notification), nil
}

// --- Helpers ---

func toNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:               n.ID.String(),
		ProjectID:        n.ProjectID.String(),
		SupplierID:       n.SupplierID,
		Message:          n.Message,
		NotificationType: n.NotificationType,
		IsRead:           n.IsRead,
		CreatedUTC:       n.CreatedUTC.UTC().Format(time.RFC3339),
	}
}
