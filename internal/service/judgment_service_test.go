package service

import (
	"context"
	"testing"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetJudgmentOverridesAutomaticNG(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusLocked)
	record := env.seedRecord(t, project.ID, "10.6")
	ctx := context.Background()

	// Out of tolerance, so the automatic judgment is NG.
	before, err := env.judgments.GetFinalJudgment(ctx, record.ID.String())
	require.NoError(t, err)
	assert.False(t, before.Judgment.IsOK)
	assert.False(t, before.Judgment.IsManual)

	after, err := env.judgments.SetJudgment(ctx, internal.ID.String(), record.ID.String(), true, "visually fine")
	require.NoError(t, err)

	assert.True(t, after.Judgment.IsOK)
	assert.True(t, after.Judgment.IsManual)
	require.NotNil(t, after.Judgment.Comment)
	assert.Equal(t, "visually fine", *after.Judgment.Comment)
	assert.Equal(t, int64(1), env.countAuditRows(t, model.ActionSetJudgment))

	// Project status is untouched by judgment edits.
	assert.Equal(t, model.ProjectStatusLocked, env.projectStatus(t, project.ID))
}

func TestSetJudgmentLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)
	project := env.seedProject(t, model.ProjectStatusLocked)
	record := env.seedRecord(t, project.ID, "10.0")
	ctx := context.Background()

	_, err := env.judgments.SetJudgment(ctx, internal.ID.String(), record.ID.String(), false, "scratch on surface")
	require.NoError(t, err)

	after, err := env.judgments.SetJudgment(ctx, internal.ID.String(), record.ID.String(), true, "")
	require.NoError(t, err)

	assert.True(t, after.Judgment.IsOK)
	assert.True(t, after.Judgment.IsManual)
	// Empty comment is stored verbatim, not treated as "keep previous".
	require.NotNil(t, after.Judgment.Comment)
	assert.Equal(t, "", *after.Judgment.Comment)
}

func TestSetJudgmentRecordNotFound(t *testing.T) {
	env := newTestEnv(t)
	internal := env.seedUser(t, model.RoleInternal)

	_, err := env.judgments.SetJudgment(context.Background(), internal.ID.String(),
		"e7a1f9a0-0000-4000-8000-000000000000", true, "")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = env.judgments.SetJudgment(context.Background(), internal.ID.String(), "not-a-uuid", true, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestGetFinalJudgmentBoundaryValues(t *testing.T) {
	env := newTestEnv(t)
	project := env.seedProject(t, model.ProjectStatusLocked)
	ctx := context.Background()

	lower := env.seedRecord(t, project.ID, "9.5")
	upper := env.seedRecord(t, project.ID, "10.5")

	lowerResp, err := env.judgments.GetFinalJudgment(ctx, lower.ID.String())
	require.NoError(t, err)
	assert.True(t, lowerResp.Judgment.IsOK, "value on lower bound is OK")

	upperResp, err := env.judgments.GetFinalJudgment(ctx, upper.ID.String())
	require.NoError(t, err)
	assert.True(t, upperResp.Judgment.IsOK, "value on upper bound is OK")
}
