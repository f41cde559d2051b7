package service

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database.
// A nil websocket hub is used; broadcasts are skipped silently.
type testEnv struct {
	db *gorm.DB

	projectRepo      repository.ProjectRepository
	measurementRepo  repository.MeasurementRepository
	approvalRepo     repository.ApprovalRepository
	notificationRepo repository.NotificationRepository
	auditRepo        repository.AuditRepository

	projects      ProjectService
	approvals     ApprovalService
	judgments     JudgmentService
	notifications NotificationService
	users         UserService
	audits        AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Unique shared-cache name per test so parallel tests never share state.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{db: db}
	env.projectRepo = repository.NewProjectRepository(db)
	env.measurementRepo = repository.NewMeasurementRepository(db)
	env.approvalRepo = repository.NewApprovalRepository(db)
	env.notificationRepo = repository.NewNotificationRepository(db)
	env.auditRepo = repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)
	locks := NewProjectLocks()

	env.projects = NewProjectService(env.projectRepo, env.measurementRepo, env.approvalRepo, env.auditRepo, txManager, locks, nil)
	env.approvals = NewApprovalService(env.approvalRepo, env.projectRepo, env.auditRepo, txManager, locks, nil)
	env.judgments = NewJudgmentService(env.measurementRepo, env.projectRepo, env.auditRepo, txManager, locks)
	env.notifications = NewNotificationService(env.notificationRepo, env.projectRepo, env.auditRepo, txManager, nil)
	env.users = NewUserService(repository.NewUserRepository(db))
	env.audits = NewAuditService(env.auditRepo)

	return env
}

func (e *testEnv) seedUser(t *testing.T, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username: fmt.Sprintf("user-%s", uuid.NewString()[:8]),
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedProject(t *testing.T, status string) *model.Project {
	t.Helper()
	project := &model.Project{
		PartNo:   "PN-100",
		LotNo:    fmt.Sprintf("LOT-%s", uuid.NewString()[:8]),
		TolUpper: decimal.RequireFromString("10.5"),
		TolLower: decimal.RequireFromString("9.5"),
		Status:   status,
	}
	require.NoError(t, e.db.Create(project).Error)
	return project
}

func (e *testEnv) seedRecord(t *testing.T, projectID uuid.UUID, value string) *model.MeasurementRecord {
	t.Helper()
	record := &model.MeasurementRecord{
		ProjectID: projectID,
		MeasureNo: 1,
		Value:     decimal.RequireFromString(value),
	}
	require.NoError(t, e.db.Create(record).Error)
	return record
}

func (e *testEnv) projectStatus(t *testing.T, id uuid.UUID) string {
	t.Helper()
	project, err := e.projectRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return project.Status
}

func (e *testEnv) countAuditRows(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
