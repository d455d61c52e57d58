package reminder

import (
	"time"

	"loft/internal/target"
)

// Reminder is armed while FiredAt is nil. A poll that finds it due stamps
// FiredAt exactly once; editing DueAt on a not-done row clears it again.
type Reminder struct {
	ID         uint64      `gorm:"primaryKey"`
	TargetType target.Kind `gorm:"type:text;not null"`
	TargetID   uint64      `gorm:"not null"`
	DueAt      time.Time   `gorm:"index;not null"`
	Message    string      `gorm:"type:text;not null;default:''"`
	IsDone     bool        `gorm:"not null;default:false"`
	FiredAt    *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (r Reminder) Target() target.Ref {
	return target.Ref{Kind: r.TargetType, ID: r.TargetID}
}
