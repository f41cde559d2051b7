package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type SetJudgmentRequest struct {
	IsOK    *bool  `json:"isOk" binding:"required"`
	Comment string `json:"comment"`
}

// --- Interface ---

type JudgmentService interface {
	SetJudgment(ctx context.Context, userID string, recordID string, isOK bool, comment string) (MeasurementResponse, error)
	GetFinalJudgment(ctx context.Context, recordID string) (MeasurementResponse, error)
}

type judgmentService struct {
	measurementRepo repository.MeasurementRepository
	projectRepo     repository.ProjectRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	locks           *ProjectLocks
}

func NewJudgmentService(
	measurementRepo repository.MeasurementRepository,
	projectRepo repository.ProjectRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	locks *ProjectLocks,
) JudgmentService {
	return &judgmentService{
		measurementRepo: measurementRepo,
		projectRepo:     projectRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		locks:           locks,
	}
}

// --- Implementation ---

// SetJudgment applies a manual override to a record. Last write wins, the
// comment is stored verbatim (empty allowed), and project status is never
// touched.
func (s *judgmentService) SetJudgment(ctx context.Context, userID string, recordID string, isOK bool, comment string) (MeasurementResponse, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return MeasurementResponse{}, apperror.Validation("invalid measurement record id")
	}

	peek, err := s.measurementRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MeasurementResponse{}, apperror.NotFound("measurement record not found")
		}
		return MeasurementResponse{}, fmt.Errorf("failed to load measurement record: %w", err)
	}

	unlock := s.locks.Lock(peek.ProjectID)
	defer unlock()

	var record *model.MeasurementRecord
	var project *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		record, err = s.measurementRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("measurement record not found")
			}
			return fmt.Errorf("failed to load measurement record: %w", err)
		}

		project, err = s.projectRepo.FindByID(txCtx, record.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		record.ManualJudgment = &isOK
		record.JudgmentComment = &comment
		if err := s.measurementRepo.Update(txCtx, record); err != nil {
			return fmt.Errorf("failed to update measurement record: %w", err)
		}

		return writeAuditLog(txCtx, s.auditRepo, userID, model.ActionSetJudgment, record.ID.String(),
			project.PartNo+"/"+project.LotNo, map[string]interface{}{
				"isOk":    isOK,
				"comment": comment,
			})
	})
	if err != nil {
		return MeasurementResponse{}, err
	}

	return toMeasurementResponse(record, project), nil
}

func (s *judgmentService) GetFinalJudgment(ctx context.Context, recordID string) (MeasurementResponse, error) {
	id, err := uuid.Parse(recordID)
	if err != nil {
		return MeasurementResponse{}, apperror.Validation("invalid measurement record id")
	}

	record, err := s.measurementRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MeasurementResponse{}, apperror.NotFound("measurement record not found")
		}
		return MeasurementResponse{}, fmt.Errorf("failed to load measurement record: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, record.ProjectID)
	if err != nil {
		return MeasurementResponse{}, fmt.Errorf("failed to load project: %w", err)
	}

	return toMeasurementResponse(record, project), nil
}
