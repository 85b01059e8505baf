package rdb

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coderops/nightshift/domain/model"
)

// Recorder is a GORM-backed implementation of domain.HistoryRecorder.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordRun appends one run with its stop records in a single transaction.
func (r *Recorder) RecordRun(ctx context.Context, rec *model.RunRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &RunRecord{
			ID:         rec.ID,
			StartedAt:  rec.StartedAt,
			FinishedAt: rec.FinishedAt,
			DryRun:     rec.DryRun,
			Evaluated:  rec.Evaluated,
			Eligible:   rec.Eligible,
			Succeeded:  rec.Succeeded,
			Failed:     rec.Failed,
			Skipped:    rec.Skipped,
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		for _, s := range rec.Stops {
			stop := &StopRecord{
				RunID:       rec.ID,
				WorkspaceID: s.WorkspaceID,
				Owner:       s.Owner,
				Category:    string(s.Category),
				Outcome:     s.Outcome,
				Reason:      s.Reason,
				Detail:      s.Detail,
				Attempts:    s.Attempts,
			}
			if err := tx.Create(stop).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
