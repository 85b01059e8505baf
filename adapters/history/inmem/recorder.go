// Package inmem holds run history in memory, used in tests and when no
// history db is configured but a recorder is still wanted.
package inmem

import (
	"context"
	"sync"

	"github.com/coderops/nightshift/domain/model"
)

// Recorder is a thread-safe in-memory implementation of domain.HistoryRecorder.
type Recorder struct {
	mu   sync.RWMutex
	runs []*model.RunRecord
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordRun(_ context.Context, rec *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	cp.Stops = append([]model.StopRecord(nil), rec.Stops...)
	r.runs = append(r.runs, &cp)
	return nil
}

// Runs returns a copy of the recorded runs.
func (r *Recorder) Runs() []*model.RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.RunRecord, 0, len(r.runs))
	for _, v := range r.runs {
		cp := *v
		out = append(out, &cp)
	}
	return out
}
