package service

import (
	"sync"

	"github.com/google/uuid"
)

// ProjectLocks serializes mutating operations per project: status
// transitions, approval creation/resolution and judgment edits on a project
// all go through its mutex, while distinct projects proceed concurrently.
// Entries are never evicted; the per-project footprint is one mutex.
type ProjectLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{}
}

// Lock acquires the project's mutex and returns the unlock function.
func (l *ProjectLocks) Lock(projectID uuid.UUID) func() {
	v, _ := l.locks.LoadOrStore(projectID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
