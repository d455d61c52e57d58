package link

import (
	"time"

	"loft/internal/target"
)

// Attachment records a URL the user pinned to a task or note. Every
// enrichment field is best-effort: nil means the field could not be acquired,
// which is a normal terminal state, not an error.
type Attachment struct {
	ID        uint64      `gorm:"primaryKey"`
	OwnerType target.Kind `gorm:"type:text;not null"`
	OwnerID   uint64      `gorm:"not null"`
	URL       string      `gorm:"type:text;not null"`

	Title          *string `gorm:"type:text"`
	Description    *string `gorm:"type:text"`
	ImageURL       *string `gorm:"type:text"`
	FaviconURL     *string `gorm:"type:text"`
	ScreenshotPath *string `gorm:"type:text"`

	LastFetchedAt time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (a Attachment) Owner() target.Ref {
	return target.Ref{Kind: a.OwnerType, ID: a.OwnerID}
}
