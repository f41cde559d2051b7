package service

import (
	"context"
	"sync"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCreationRequestMovesDraftToPending(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusDraft)

	resp, err := env.approvals.CreateApprovalRequest(context.Background(), internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCreation,
		RequestComment: "please review tolerances",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalPending, resp.Status)
	assert.Equal(t, model.ProjectStatusPendingApproval, resp.ProjectStatus)
	assert.Equal(t, model.ProjectStatusPendingApproval, env.projectStatus(t, project.ID))
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionCreateApprovalRequest))
}

func TestCreateRequestRequiresComment(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusDraft)

	_, err := env.approvals.CreateApprovalRequest(context.Background(), internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCreation,
		RequestComment: "   ",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, model.ProjectStatusDraft, env.projectStatus(t, project.ID))
}

func TestCreateRequestRejectsWrongStatus(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	ctx := context.Background()

	cases := []struct {
		status      string
		requestType string
	}{
		{model.ProjectStatusActive, model.RequestTypeProjectCreation},
		{model.ProjectStatusLocked, model.RequestTypeProjectCreation},
		{model.ProjectStatusFixed, model.RequestTypeProjectCreation},
		{model.ProjectStatusDraft, model.RequestTypeProjectCompletion},
		{model.ProjectStatusPendingApproval, model.RequestTypeProjectCompletion},
		{model.ProjectStatusActive, model.RequestTypeProjectCompletion},
		{model.ProjectStatusFixed, model.RequestTypeProjectCompletion},
	}

	for _, tc := range cases {
		project := env.seedProject(t, tc.status)
		_, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
			ProjectID:      project.ID.String(),
			RequestType:    tc.requestType,
			RequestComment: "x",
		})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState),
			"%s request from %s should be rejected", tc.requestType, tc.status)
	}
}

func TestDuplicatePendingRequestConflicts(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	_, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "first",
	})
	require.NoError(t, err)

	_, err = env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "second",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestConcurrentCreateRequestOnlyOneSucceeds(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
				ProjectID:      project.ID.String(),
				RequestType:    model.RequestTypeProjectCompletion,
				RequestComment: "concurrent",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestProcessCreationApproval(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusDraft)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCreation,
		RequestComment: "ready",
	})
	require.NoError(t, err)

	resolved, err := env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, true, "looks good")
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalApproved, resolved.Status)
	assert.Equal(t, "looks good", resolved.ApprovalComment)
	require.NotNil(t, resolved.ApprovedUTC)
	assert.Equal(t, model.ProjectStatusActive, env.projectStatus(t, project.ID))
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionApproveRequest))
}

func TestProcessCreationRejectionReturnsToDraft(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusDraft)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCreation,
		RequestComment: "ready",
	})
	require.NoError(t, err)

	resolved, err := env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, false, "tolerances too wide")
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalRejected, resolved.Status)
	assert.Equal(t, model.ProjectStatusDraft, env.projectStatus(t, project.ID))
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionRejectRequest))

	// A rejected request no longer blocks filing a fresh one.
	_, err = env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCreation,
		RequestComment: "tightened",
	})
	require.NoError(t, err)
}

func TestProcessCompletionApprovalFixesProject(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "lot done",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusLocked, env.projectStatus(t, project.ID))

	_, err = env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, true, "")
	require.NoError(t, err)

	updated, err := env.projectRepo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusFixed, updated.Status)
	assert.NotNil(t, updated.ApprovedUTC)
}

func TestProcessCompletionRejectionKeepsLocked(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "lot done",
	})
	require.NoError(t, err)

	_, err = env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, false, "rework needed")
	require.NoError(t, err)

	assert.Equal(t, model.ProjectStatusLocked, env.projectStatus(t, project.ID))
}

func TestProcessApprovalIsOneShot(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID:      project.ID.String(),
		RequestType:    model.RequestTypeProjectCompletion,
		RequestComment: "lot done",
	})
	require.NoError(t, err)

	_, err = env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, true, "")
	require.NoError(t, err)

	_, err = env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, false, "changed my mind")
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	assert.Equal(t, model.ProjectStatusFixed, env.projectStatus(t, project.ID))
}

func TestProcessApprovalNotFound(t *testing.T) {
	env := newTestEnv(t)
	manager := env.seedUser(t, model.RoleManager)

	_, err := env.approvals.ProcessApproval(context.Background(), manager.ID.String(),
		"e7a1f9a0-0000-4000-8000-000000000000", true, "")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListApprovalRequestsFilterByStatus(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	manager := env.seedUser(t, model.RoleManager)
	ctx := context.Background()

	first := env.seedProject(t, model.ProjectStatusLocked)
	second := env.seedProject(t, model.ProjectStatusLocked)

	pending, err := env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID: first.ID.String(), RequestType: model.RequestTypeProjectCompletion, RequestComment: "a",
	})
	require.NoError(t, err)
	_, err = env.approvals.CreateApprovalRequest(ctx, internal.ID.String(), CreateApprovalRequestDTO{
		ProjectID: second.ID.String(), RequestType: model.RequestTypeProjectCompletion, RequestComment: "b",
	})
	require.NoError(t, err)

	_, err = env.approvals.ProcessApproval(ctx, manager.ID.String(), pending.ID, true, "")
	require.NoError(t, err)

	pendingOnly, total, err := env.approvals.ListApprovalRequests(ctx, ApprovalFilter{Status: model.ApprovalPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pendingOnly, 1)
	assert.Equal(t, second.ID.String(), pendingOnly[0].ProjectID)

	all, total, err := env.approvals.ListApprovalRequests(ctx, ApprovalFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	_, _, err = env.approvals.ListApprovalRequests(ctx, ApprovalFilter{Status: "Bogus"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestListMyApprovalRequests(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, model.RoleInternal)
	bob := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	_, err := env.approvals.CreateApprovalRequest(ctx, alice.ID.String(), CreateApprovalRequestDTO{
		ProjectID: project.ID.String(), RequestType: model.RequestTypeProjectCompletion, RequestComment: "mine",
	})
	require.NoError(t, err)

	mine, err := env.approvals.ListMyApprovalRequests(ctx, alice.ID.String())
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := env.approvals.ListMyApprovalRequests(ctx, bob.ID.String())
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
