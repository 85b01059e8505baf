package rdb

import "time"

// RunRecord is the RDB persistence model for one completed sweep.
// Table name: runs
type RunRecord struct {
	ID         string    `gorm:"primaryKey;type:text;not null"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time `gorm:"not null"`
	DryRun     bool      `gorm:"not null"`
	Evaluated  int       `gorm:"not null"`
	Eligible   int       `gorm:"not null"`
	Succeeded  int       `gorm:"not null"`
	Failed     int       `gorm:"not null"`
	Skipped    int       `gorm:"not null"`
}

func (RunRecord) TableName() string { return "runs" }

// StopRecord is the RDB persistence model for one attempted stop.
// Table name: stops
type StopRecord struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"type:text;not null;index"` // references RunRecord
	WorkspaceID string `gorm:"type:text;not null"`
	Owner       string `gorm:"type:text"`
	Category    string `gorm:"type:text;not null"`
	Outcome     string `gorm:"type:text;not null"`
	Reason      string `gorm:"type:text"`
	Detail      string `gorm:"type:text"`
	Attempts    int    `gorm:"not null"`
}

func (StopRecord) TableName() string { return "stops" }
