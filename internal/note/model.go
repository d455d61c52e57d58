package note

import "time"

type Note struct {
	ID        uint64    `gorm:"primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	Body      string    `gorm:"type:text;not null;default:''"`
	Position  int       `gorm:"index;not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Tags []string `gorm:"-"`
}

type NoteTag struct {
	NoteID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Tag    string `gorm:"primaryKey;type:text"`
}
