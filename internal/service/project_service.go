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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProjectRequest struct {
	PartNo   string          `json:"partNo" binding:"required"`
	LotNo    string          `json:"lotNo" binding:"required"`
	TolUpper decimal.Decimal `json:"tolUpper"`
	TolLower decimal.Decimal `json:"tolLower"`
}

type MeasurementRowRequest struct {
	MeasureNo  int             `json:"measureNo"`
	SupplierID string          `json:"supplierId"`
	Value      decimal.Decimal `json:"value"`
}

type ProjectResponse struct {
	ID          string          `json:"id"`
	PartNo      string          `json:"partNo"`
	LotNo       string          `json:"lotNo"`
	TolUpper    decimal.Decimal `json:"tolUpper"`
	TolLower    decimal.Decimal `json:"tolLower"`
	Status      string          `json:"status"`
	CreatedUTC  string          `json:"createdUtc"`
	ApprovedUTC *string         `json:"approvedUtc"`
}

type MeasurementResponse struct {
	ID              string               `json:"id"`
	ProjectID       string               `json:"projectId"`
	MeasureNo       int                  `json:"measureNo"`
	SupplierID      string               `json:"supplierId"`
	Value           decimal.Decimal      `json:"value"`
	ManualJudgment  *bool                `json:"manualJudgment"`
	JudgmentComment *string              `json:"judgmentComment"`
	Judgment        model.JudgmentResult `json:"judgment"`
}

type InspectionResponse struct {
	ProjectResponse
	Records []MeasurementResponse `json:"records"`
}

// --- Interface ---

type ProjectService interface {
	CreateProject(ctx context.Context, userID string, req CreateProjectRequest) (ProjectResponse, error)
	ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error)
	ListInspections(ctx context.Context, partNo, lotNo string) ([]InspectionResponse, error)
	ApproveProject(ctx context.Context, userID string, projectID string) (ProjectResponse, error)
	ImportMeasurements(ctx context.Context, userID string, projectID string, rows []MeasurementRowRequest) (ProjectResponse, error)
}

type projectService struct {
	projectRepo     repository.ProjectRepository
	measurementRepo repository.MeasurementRepository
	approvalRepo    repository.ApprovalRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	locks           *ProjectLocks
	hub             *ws.Hub
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	measurementRepo repository.MeasurementRepository,
	approvalRepo repository.ApprovalRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	locks *ProjectLocks,
	hub *ws.Hub,
) ProjectService {
	return &projectService{
		projectRepo:     projectRepo,
		measurementRepo: measurementRepo,
		approvalRepo:    approvalRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		locks:           locks,
		hub:             hub,
	}
}

// --- Implementation ---

func (s *projectService) CreateProject(ctx context.Context, userID string, req CreateProjectRequest) (ProjectResponse, error) {
	partNo := strings.TrimSpace(req.PartNo)
	lotNo := strings.TrimSpace(req.LotNo)
	if partNo == "" || lotNo == "" {
		return ProjectResponse{}, apperror.Validation("partNo and lotNo are required")
	}
	if !req.TolUpper.GreaterThan(req.TolLower) {
		return ProjectResponse{}, apperror.Validation("tolUpper must be greater than tolLower")
	}

	project := model.Project{
		PartNo:    partNo,
		LotNo:     lotNo,
		TolUpper:  req.TolUpper,
		TolLower:  req.TolLower,
		Status:    model.ProjectStatusDraft,
		CreatedBy: parseUserID(userID),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, &project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return s.writeAudit(txCtx, userID, model.ActionCreateProject, project.ID.String(), partNo+"/"+lotNo, req)
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	return toProjectResponse(&project), nil
}

func (s *projectService) ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error) {
	params := pagination.New(page, limit)

	projects, total, err := s.projectRepo.List(ctx, params.Page, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}

	res := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, toProjectResponse(&projects[i]))
	}
	return res, total, nil
}

// ListInspections returns projects with their records and the effective
// judgment for each record.
func (s *projectService) ListInspections(ctx context.Context, partNo, lotNo string) ([]InspectionResponse, error) {
	projects, err := s.projectRepo.ListWithRecords(ctx, strings.TrimSpace(partNo), strings.TrimSpace(lotNo))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inspections: %w", err)
	}

	res := make([]InspectionResponse, 0, len(projects))
	for i := range projects {
		project := &projects[i]
		records := make([]MeasurementResponse, 0, len(project.Records))
		for j := range project.Records {
			records = append(records, toMeasurementResponse(&project.Records[j], project))
		}
		res = append(res, InspectionResponse{
			ProjectResponse: toProjectResponse(project),
			Records:         records,
		})
	}
	return res, nil
}

// ApproveProject is the manager fast path from Locked to Fixed. Any Pending
// completion request is resolved as Approved in the same transaction so it
// cannot dangle and block a later request under the at-most-one invariant.
func (s *projectService) ApproveProject(ctx context.Context, userID string, projectID string) (ProjectResponse, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return ProjectResponse{}, apperror.Validation("invalid project id")
	}
	approverID := parseUserID(userID)

	unlock := s.locks.Lock(id)
	defer unlock()

	var project *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err = s.projectRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}

		next, ok := model.NextStatus(project.Status, model.EventCompletionApproved)
		if !ok {
			return apperror.InvalidState("project cannot be approved while %s", project.Status)
		}

		now := time.Now().UTC()

		pending, err := s.approvalRepo.FindPendingByProjectAndType(txCtx, id, model.RequestTypeProjectCompletion)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending != nil {
			pending.Status = model.ApprovalApproved
			pending.ApprovedBy = approverID
			pending.ApprovedUTC = &now
			pending.ApprovalComment = "Resolved by direct project approval"
			if err := s.approvalRepo.Update(txCtx, pending); err != nil {
				return fmt.Errorf("failed to resolve pending request: %w", err)
			}
		}

		project.Status = next
		if project.ApprovedUTC == nil {
			project.ApprovedUTC = &now
		}
		if err := s.projectRepo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		return s.writeAudit(txCtx, userID, model.ActionApproveProject, project.ID.String(),
			project.PartNo+"/"+project.LotNo, map[string]interface{}{"status": project.Status})
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	resp := toProjectResponse(project)
	broadcastEvent(s.hub, "project.approved", resp)
	return resp, nil
}

// ImportMeasurements is the file-arrival trigger: it inserts the parsed rows
// and applies Draft -> Locked as one transaction.
func (s *projectService) ImportMeasurements(ctx context.Context, userID string, projectID string, rows []MeasurementRowRequest) (ProjectResponse, error) {
	id, err := uuid.Parse(projectID)
	if err != nil {
		return ProjectResponse{}, apperror.Validation("invalid project id")
	}
	if len(rows) == 0 {
		return ProjectResponse{}, apperror.Validation("at least one measurement row is required")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var project *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err = s.projectRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("project not found")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}

		next, ok := model.NextStatus(project.Status, model.EventImportMeasurements)
		if !ok {
			return apperror.InvalidState("measurements cannot be imported while the project is %s", project.Status)
		}

		records := make([]model.MeasurementRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, model.MeasurementRecord{
				ProjectID:  id,
				MeasureNo:  row.MeasureNo,
				SupplierID: row.SupplierID,
				Value:      row.Value,
			})
		}
		if err := s.measurementRepo.CreateBatch(txCtx, records); err != nil {
			return fmt.Errorf("failed to insert measurement records: %w", err)
		}

		project.Status = next
		if err := s.projectRepo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		return s.writeAudit(txCtx, userID, model.ActionImportMeasurements, project.ID.String(),
			project.PartNo+"/"+project.LotNo, map[string]interface{}{"recordCount": len(rows)})
	})
	if err != nil {
		return ProjectResponse{}, err
	}

	resp := toProjectResponse(project)
	broadcastEvent(s.hub, "project.locked", resp)
	return resp, nil
}

// --- Helpers ---

func (s *projectService) writeAudit(ctx context.Context, userID, action, entityID, entityName string, payload interface{}) error {
	return writeAuditLog(ctx, s.auditRepo, userID, action, entityID, entityName, payload)
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:         p.ID.String(),
		PartNo:     p.PartNo,
		LotNo:      p.LotNo,
		TolUpper:   p.TolUpper,
		TolLower:   p.TolLower,
		Status:     p.Status,
		CreatedUTC: p.CreatedUTC.UTC().Format(time.RFC3339),
	}
	if p.ApprovedUTC != nil {
		s := p.ApprovedUTC.UTC().Format(time.RFC3339)
		resp.ApprovedUTC = &s
	}
	return resp
}

func toMeasurementResponse(r *model.MeasurementRecord, p *model.Project) MeasurementResponse {
	return MeasurementResponse{
		ID:              r.ID.String(),
		ProjectID:       r.ProjectID.String(),
		MeasureNo:       r.MeasureNo,
		SupplierID:      r.SupplierID,
		Value:           r.Value,
		ManualJudgment:  r.ManualJudgment,
		JudgmentComment: r.JudgmentComment,
		Judgment:        model.FinalJudgment(r, p),
	}
}
