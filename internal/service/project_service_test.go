package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)

	resp, err := env.projects.CreateProject(context.Background(), user.ID.String(), CreateProjectRequest{
		PartNo:   "PN-77",
		LotNo:    "LOT-1",
		TolUpper: decimal.RequireFromString("10.5"),
		TolLower: decimal.RequireFromString("9.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProjectStatusDraft, resp.Status)
	assert.Equal(t, "PN-77", resp.PartNo)
	assert.Nil(t, resp.ApprovedUTC)
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionCreateProject))
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateProjectRequest
	}{
		{"blank part number", CreateProjectRequest{
			PartNo: "   ", LotNo: "LOT-1",
			TolUpper: decimal.RequireFromString("10.5"), TolLower: decimal.RequireFromString("9.5"),
		}},
		{"blank lot number", CreateProjectRequest{
			PartNo: "PN-77", LotNo: "",
			TolUpper: decimal.RequireFromString("10.5"), TolLower: decimal.RequireFromString("9.5"),
		}},
		{"tolUpper equals tolLower", CreateProjectRequest{
			PartNo: "PN-77", LotNo: "LOT-1",
			TolUpper: decimal.RequireFromString("9.5"), TolLower: decimal.RequireFromString("9.5"),
		}},
		{"tolUpper below tolLower", CreateProjectRequest{
			PartNo: "PN-77", LotNo: "LOT-1",
			TolUpper: decimal.RequireFromString("9.0"), TolLower: decimal.RequireFromString("9.5"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.projects.CreateProject(ctx, user.ID.String(), tc.req)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		})
	}
}

func TestImportMeasurementsLocksProject(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusDraft)
	ctx := context.Background()

	resp, err := env.projects.ImportMeasurements(ctx, user.ID.String(), project.ID.String(), []MeasurementRowRequest{
		{MeasureNo: 1, SupplierID: "SUP-A", Value: decimal.RequireFromString("9.8")},
		{MeasureNo: 2, SupplierID: "SUP-A", Value: decimal.RequireFromString("10.6")},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusLocked, resp.Status)

	records, err := env.measurementRepo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionImportMeasurements))
}

func TestImportMeasurementsRejectedOutsideDraft(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	ctx := context.Background()

	for _, status := range []string{
		model.ProjectStatusPendingApproval,
		model.ProjectStatusActive,
		model.ProjectStatusLocked,
		model.ProjectStatusFixed,
	} {
		project := env.seedProject(t, status)
		_, err := env.projects.ImportMeasurements(ctx, user.ID.String(), project.ID.String(), []MeasurementRowRequest{
			{MeasureNo: 1, Value: decimal.RequireFromString("10.0")},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState), "status %s should reject import", status)
		assert.Equal(t, status, env.projectStatus(t, project.ID), "status %s must not change on failed import", status)
	}
}

func TestImportMeasurementsEmptyRows(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusDraft)

	_, err := env.projects.ImportMeasurements(context.Background(), user.ID.String(), project.ID.String(), nil)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, model.ProjectStatusDraft, env.projectStatus(t, project.ID))
}

func TestApproveProjectDirect(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusLocked)

	resp, err := env.projects.ApproveProject(context.Background(), manager.ID.String(), project.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.ProjectStatusFixed, resp.Status)
	require.NotNil(t, resp.ApprovedUTC)
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionApproveProject))
}

func TestApproveProjectInvalidStates(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, model.RoleManager)
	ctx := context.Background()

	for _, status := range []string{
		model.ProjectStatusDraft,
		model.ProjectStatusPendingApproval,
		model.ProjectStatusActive,
		model.ProjectStatusFixed,
	} {
		project := env.seedProject(t, status)
		_, err := env.projects.ApproveProject(ctx, manager.ID.String(), project.ID.String())
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState), "status %s should reject direct approval", status)
	}
}

func TestApproveProjectResolvesPendingCompletionRequest(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "lot complete",
	})
	require.NoError(t, err)

	_, err = env.projects.ApproveProject(ctx, manager.ID.String(), project.ID.String())
	require.NoError(t, err)

	resolved, err := env.approvals.GetApprovalRequest(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, resolved.Status)
	require.NotNil(t, resolved.ApprovedBy)
	assert.Equal(t, manager.ID.String(), *resolved.ApprovedBy)

	// The resolved request no longer blocks the at-most-one-Pending rule,
	// but the project is Fixed so nothing further can be filed anyway.
	_, err = env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "again",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
}

func TestApproveProjectNotFound(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, model.RoleManager)

	_, err := env.projects.ApproveProject(context.Background(), manager.ID.String(), "e7a1f9a0-0000-4000-8000-000000000000")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListInspectionsComputesJudgments(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusDraft)
	ctx := context.Background()

	_, err := env.projects.ImportMeasurements(ctx, user.ID.String(), project.ID.String(), []MeasurementRowRequest{
		{MeasureNo: 1, Value: decimal.RequireFromString("9.5")},
		{MeasureNo: 2, Value: decimal.RequireFromString("10.6")},
	})
	require.NoError(t, err)

	inspections, err := env.projects.ListInspections(ctx, project.PartNo, project.LotNo)
	require.NoError(t, err)
	require.Len(t, inspections, 1)
	require.Len(t, inspections[0].Records, 2)

	// Records come back ordered by measure number.
	assert.Equal(t, 1, inspections[0].Records[0].MeasureNo)
	assert.True(t, inspections[0].Records[0].Judgment.IsOK)
	assert.Equal(t, 2, inspections[0].Records[1].MeasureNo)
	assert.False(t, inspections[0].Records[1].Judgment.IsOK)
}

func TestListProjects(t *testing.T) {
	env := newTestEnv(t)
	env.seedProject(t, model.ProjectStatusDraft)
	env.seedProject(t, model.ProjectStatusLocked)

	projects, total, err := env.projects.ListProjects(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, projects, 2)
}
