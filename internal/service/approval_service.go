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

type CreateApprovalRequestDTO struct {
	ProjectID      string `json:"projectId" binding:"required"`
	RequestType    string `json:"requestType" binding:"required,oneof=ProjectCreation ProjectCompletion"`
	RequestComment string `json:"requestComment" binding:"required"`
}

type ProcessApprovalDTO struct {
	IsApproved      *bool  `json:"isApproved" binding:"required"`
	ApprovalComment string `json:"approvalComment"`
}

type ApprovalFilter struct {
	Status string // Pending, Approved, Rejected or empty for all
	Page   int
	Limit  int
}

type ApprovalRequestResponse struct {
	ID              string  `json:"id"`
	ProjectID       string  `json:"projectId"`
	PartNo          string  `json:"partNo,omitempty"`
	LotNo           string  `json:"lotNo,omitempty"`
	ProjectStatus   string  `json:"projectStatus,omitempty"`
	RequestType     string  `json:"requestType"`
	RequestComment  string  `json:"requestComment"`
	RequestedBy     string  `json:"requestedBy"`
	RequestedUTC    string  `json:"requestedUtc"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approvedBy"`
	ApprovedUTC     *string `json:"approvedUtc"`
	ApprovalComment string  `json:"approvalComment"`
}

// --- Interface ---

type ApprovalService interface {
	CreateApprovalRequest(ctx context.Context, userID string, req CreateApprovalRequestDTO) (ApprovalRequestResponse, error)
	ListApprovalRequests(ctx context.Context, filter ApprovalFilter) ([]ApprovalRequestResponse, int64, error)
	ListMyApprovalRequests(ctx context.Context, userID string) ([]ApprovalRequestResponse, error)
	GetApprovalRequest(ctx context.Context, id string) (ApprovalRequestResponse, error)
	ProcessApproval(ctx context.Context, userID string, id string, isApproved bool, approvalComment string) (ApprovalRequestResponse, error)
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	projectRepo  repository.ProjectRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	locks        *ProjectLocks
	hub          *ws.Hub
}

func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	locks *ProjectLocks,
	hub *ws.Hub,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		projectRepo:  projectRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		locks:        locks,
		hub:          hub,
	}
}

// --- Implementation ---

// CreateApprovalRequest files a Pending request after validating the gate
// against the project's current status. The pending-duplicate check and the
// insert run inside the project's exclusion scope, so two concurrent callers
// cannot both pass the check.
func (s *approvalService) CreateApprovalRequest(ctx context.Context, userID string, req CreateApprovalRequestDTO) (ApprovalRequestResponse, error) {
	if strings.TrimSpace(req.RequestComment) == "" {
		return ApprovalRequestResponse{}, apperror.Validation("requestComment is required")
	}
	if !model.ValidRequestType(req.RequestType) {
		return ApprovalRequestResponse{}, apperror.Validation("unknown request type %q", req.RequestType)
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return ApprovalRequestResponse{}, apperror.Validation("invalid project id")
	}
	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return ApprovalRequestResponse{}, apperror.Validation("invalid requesting user id")
	}

	unlock := s.locks.Lock(projectID)
	defer unlock()

	approval := model.ApprovalRequest{
		ProjectID:      projectID,
		RequestType:    req.RequestType,
		RequestComment: strings.TrimSpace(req.RequestComment),
		RequestedBy:    requesterID,
		Status:         model.ApprovalPending,
	}

	var project *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err = s.projectRepo.FindByID(txCtx, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}

		createdEvent, _, _, _ := model.RequestEvents(req.RequestType)
		next, ok := model.NextStatus(project.Status, createdEvent)
		if !ok {
			return apperror.InvalidState("a %s request cannot be filed while the project is %s",
				req.RequestType, project.Status)
		}

		pending, err := s.approvalRepo.FindPendingByProjectAndType(txCtx, projectID, req.RequestType)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending != nil {
			return apperror.Conflict("a pending %s request already exists for this project", req.RequestType)
		}

		if err := s.approvalRepo.Create(txCtx, &approval); err != nil {
			return fmt.Errorf("failed to create approval request: %w", err)
		}

		if next != project.Status {
			project.Status = next
			if err := s.projectRepo.Update(txCtx, project); err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
		}

		return s.writeAudit(txCtx, userID, model.ActionCreateApprovalRequest, approval.ID.String(),
			req.RequestType, map[string]interface{}{
				"projectId":   projectID.String(),
				"requestType": req.RequestType,
			})
	})
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	approval.Project = project
	resp := toApprovalResponse(&approval)
	broadcastEvent(s.hub, "approval.requested", resp)
	return resp, nil
}

func (s *approvalService) ListApprovalRequests(ctx context.Context, filter ApprovalFilter) ([]ApprovalRequestResponse, int64, error) {
	switch filter.Status {
	case "", model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected:
	default:
		return nil, 0, apperror.Validation("unknown status filter %q", filter.Status)
	}
	params := pagination.New(filter.Page, filter.Limit)

	approvals, total, err := s.approvalRepo.List(ctx, filter.Status, params.Page, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch approval requests: %w", err)
	}

	result := make([]ApprovalRequestResponse, 0, len(approvals))
	for i := range approvals {
		result = append(result, toApprovalResponse(&approvals[i]))
	}
	return result, total, nil
}

func (s *approvalService) ListMyApprovalRequests(ctx context.Context, userID string) ([]ApprovalRequestResponse, error) {
	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.Validation("invalid user id")
	}

	approvals, err := s.approvalRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approval requests: %w", err)
	}

	result := make([]ApprovalRequestResponse, 0, len(approvals))
	for i := range approvals {
		result = append(result, toApprovalResponse(&approvals[i]))
	}
	return result, nil
}

func (s *approvalService) GetApprovalRequest(ctx context.Context, id string) (ApprovalRequestResponse, error) {
	approvalID, err := uuid.Parse(id)
	if err != nil {
		return ApprovalRequestResponse{}, apperror.Validation("invalid approval request id")
	}

	approval, err := s.approvalRepo.FindByIDWithProject(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalRequestResponse{}, apperror.NotFound("approval request not found")
		}
		return ApprovalRequestResponse{}, fmt.Errorf("failed to load approval request: %w", err)
	}
	return toApprovalResponse(approval), nil
}

// ProcessApproval resolves a Pending request and applies the matching project
// transition in one transaction under the project's exclusion scope, so the
// request can never be resolved with the project left in a stale status.
func (s *approvalService) ProcessApproval(ctx context.Context, userID string, id string, isApproved bool, approvalComment string) (ApprovalRequestResponse, error) {
	approvalID, err := uuid.Parse(id)
	if err != nil {
		return ApprovalRequestResponse{}, apperror.Validation("invalid approval request id")
	}
	approverID, err := uuid.Parse(userID)
	if err != nil {
		return ApprovalRequestResponse{}, apperror.Validation("invalid approving user id")
	}

	// First load establishes which project's lock to take; the guard is
	// re-checked inside the critical section.
	peek, err := s.approvalRepo.FindByID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApprovalRequestResponse{}, apperror.NotFound("approval request not found")
		}
		return ApprovalRequestResponse{}, fmt.Errorf("failed to load approval request: %w", err)
	}

	unlock := s.locks.Lock(peek.ProjectID)
	defer unlock()

	var approval *model.ApprovalRequest
	var project *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approval, err = s.approvalRepo.FindByID(txCtx, approvalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("approval request not found")
			}
			return fmt.Errorf("failed to load approval request: %w", err)
		}
		if approval.Status != model.ApprovalPending {
			return apperror.InvalidState("approval request is already %s", approval.Status)
		}

		project, err = s.projectRepo.FindByID(txCtx, approval.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}

		_, approvedEvent, rejectedEvent, ok := model.RequestEvents(approval.RequestType)
		if !ok {
			return apperror.InvalidState("unknown request type %q", approval.RequestType)
		}
		event := approvedEvent
		if !isApproved {
			event = rejectedEvent
		}
		next, ok := model.NextStatus(project.Status, event)
		if !ok {
			return apperror.InvalidState("project status %s does not accept resolution of a %s request",
				project.Status, approval.RequestType)
		}

		now := time.Now().UTC()
		if isApproved {
			approval.Status = model.ApprovalApproved
		} else {
			approval.Status = model.ApprovalRejected
		}
		approval.ApprovedBy = &approverID
		approval.ApprovedUTC = &now
		approval.ApprovalComment = approvalComment
		if err := s.approvalRepo.Update(txCtx, approval); err != nil {
			return fmt.Errorf("failed to update approval request: %w", err)
		}

		if next != project.Status {
			project.Status = next
			if next == model.ProjectStatusFixed && project.ApprovedUTC == nil {
				project.ApprovedUTC = &now
			}
			if err := s.projectRepo.Update(txCtx, project); err != nil {
				return fmt.Errorf("failed to update project: %w", err)
			}
		}

		action := model.ActionApproveRequest
		if !isApproved {
			action = model.ActionRejectRequest
		}
		return s.writeAudit(txCtx, userID, action, approval.ID.String(), approval.RequestType,
			map[string]interface{}{
				"projectId":     approval.ProjectID.String(),
				"requestType":   approval.RequestType,
				"projectStatus": project.Status,
			})
	})
	if err != nil {
		return ApprovalRequestResponse{}, err
	}

	approval.Project = project
	resp := toApprovalResponse(approval)
	broadcastEvent(s.hub, "approval.resolved", resp)
	return resp, nil
}

// --- Helpers ---

func (s *approvalService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, payload interface{}) error {
	return writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, payload)
}

func toApprovalResponse(a *model.ApprovalRequest) ApprovalRequestResponse {
	resp := ApprovalRequestResponse{
		ID:              a.ID.String(),
		ProjectID:       a.ProjectID.String(),
		RequestType:     a.RequestType,
		RequestComment:  a.RequestComment,
		RequestedBy:     a.RequestedBy.String(),
		RequestedUTC:    a.RequestedUTC.UTC().Format(time.RFC3339),
		Status:          a.Status,
		ApprovalComment: a.ApprovalComment,
	}
	if a.Project != nil {
		resp.PartNo = a.Project.PartNo
		resp.LotNo = a.Project.LotNo
		resp.ProjectStatus = a.Project.Status
	}
	if a.ApprovedBy != nil {
		s := a.ApprovedBy.String()
		resp.ApprovedBy = &s
	}
	if a.ApprovedUTC != nil {
		s := a.ApprovedUTC.UTC().Format(time.RFC3339)
		resp.ApprovedUTC = &s
	}
	return resp
}
