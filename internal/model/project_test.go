package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name    string
		current string
		event   ProjectEvent
		want    string
		ok      bool
	}{
		{"draft creation request", ProjectStatusDraft, EventRequestCreation, ProjectStatusPendingApproval, true},
		{"draft import locks", ProjectStatusDraft, EventImportMeasurements, ProjectStatusLocked, true},
		{"pending re-request stays pending", ProjectStatusPendingApproval, EventRequestCreation, ProjectStatusPendingApproval, true},
		{"pending creation approved", ProjectStatusPendingApproval, EventCreationApproved, ProjectStatusActive, true},
		{"pending creation rejected", ProjectStatusPendingApproval, EventCreationRejected, ProjectStatusDraft, true},
		{"locked completion request stays locked", ProjectStatusLocked, EventRequestCompletion, ProjectStatusLocked, true},
		{"locked completion approved", ProjectStatusLocked, EventCompletionApproved, ProjectStatusFixed, true},
		{"locked completion rejected stays locked", ProjectStatusLocked, EventCompletionRejected, ProjectStatusLocked, true},

		{"draft cannot be completion approved", ProjectStatusDraft, EventCompletionApproved, "", false},
		{"active accepts no events", ProjectStatusActive, EventRequestCompletion, "", false},
		{"fixed is terminal", ProjectStatusFixed, EventRequestCompletion, "", false},
		{"fixed rejects import", ProjectStatusFixed, EventImportMeasurements, "", false},
		{"locked rejects import", ProjectStatusLocked, EventImportMeasurements, "", false},
		{"unknown status", "Archived", EventRequestCreation, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextStatus(tc.current, tc.event)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRequestEvents(t *testing.T) {
	created, approved, rejected, ok := RequestEvents(RequestTypeProjectCreation)
	assert.True(t, ok)
	assert.Equal(t, EventRequestCreation, created)
	assert.Equal(t, EventCreationApproved, approved)
	assert.Equal(t, EventCreationRejected, rejected)

	created, approved, rejected, ok = RequestEvents(RequestTypeProjectCompletion)
	assert.True(t, ok)
	assert.Equal(t, EventRequestCompletion, created)
	assert.Equal(t, EventCompletionApproved, approved)
	assert.Equal(t, EventCompletionRejected, rejected)

	_, _, _, ok = RequestEvents("Unknown")
	assert.False(t, ok)
}
