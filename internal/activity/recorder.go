// Package activity writes audit entries for mutating operations.
// Recording is fire-and-forget: a failed or slow write must never fail
// or block the operation being logged, so entries are persisted on a
// separate goroutine and failures go to the process log only.
package activity

import (
	"context"
	"log"
	"time"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// Recorder persists activity entries asynchronously.  A nil Recorder
// is safe to call and records nothing, so callers never need to guard.
type Recorder struct {
	repo    *repository.ActivityRepo
	timeout time.Duration
}

// NewRecorder returns a Recorder writing through the given repository.
func NewRecorder(repo *repository.ActivityRepo) *Recorder {
	return &Recorder{repo: repo, timeout: 5 * time.Second}
}

// Record persists the entry on its own goroutine.  The caller's
// request context is deliberately not used: the audit write must
// survive the request finishing first.
func (r *Recorder) Record(e model.ActivityEntry) {
	if r == nil || r.repo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.repo.Append(ctx, &e); err != nil {
			log.Printf("activity: append %s/%s failed: %v", e.EntityType, e.Action, err)
		}
	}()
}
