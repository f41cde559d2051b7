package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func toleranceProject(lower, upper string) *Project {
	return &Project{
		TolLower: decimal.RequireFromString(lower),
		TolUpper: decimal.RequireFromString(upper),
	}
}

func TestFinalJudgmentAutomatic(t *testing.T) {
	project := toleranceProject("9.5", "10.5")

	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"inside range", "10.0", true},
		{"exactly lower bound", "9.5", true},
		{"exactly upper bound", "10.5", true},
		{"just below lower", "9.499999", false},
		{"just above upper", "10.500001", false},
		{"far outside", "10.6", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := &MeasurementRecord{Value: decimal.RequireFromString(tc.value)}
			got := FinalJudgment(record, project)
			assert.Equal(t, tc.want, got.IsOK)
			assert.False(t, got.IsManual)
			assert.Nil(t, got.Comment)
		})
	}
}

func TestFinalJudgmentManualOverrideWins(t *testing.T) {
	project := toleranceProject("9.5", "10.5")

	// Out-of-tolerance value manually judged OK.
	manualOK := true
	comment := "visually fine"
	record := &MeasurementRecord{
		Value:           decimal.RequireFromString("10.6"),
		ManualJudgment:  &manualOK,
		JudgmentComment: &comment,
	}

	got := FinalJudgment(record, project)
	assert.True(t, got.IsOK)
	assert.True(t, got.IsManual)
	if assert.NotNil(t, got.Comment) {
		assert.Equal(t, "visually fine", *got.Comment)
	}

	// In-tolerance value manually judged NG.
	manualNG := false
	record = &MeasurementRecord{
		Value:          decimal.RequireFromString("10.0"),
		ManualJudgment: &manualNG,
	}

	got = FinalJudgment(record, project)
	assert.False(t, got.IsOK)
	assert.True(t, got.IsManual)
	assert.Nil(t, got.Comment)
}

func TestFinalJudgmentExactDecimalComparison(t *testing.T) {
	// 0.1+0.2 style values must not fail on float rounding.
	project := toleranceProject("0.3", "0.7")
	record := &MeasurementRecord{Value: decimal.RequireFromString("0.3")}

	got := FinalJudgment(record, project)
	assert.True(t, got.IsOK)
}
