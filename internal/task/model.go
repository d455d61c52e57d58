package task

import "time"

// Task is the primary record. Subtasks and tags hang off it and are removed
// with it; reminders and link attachments that point at it are not (they
// reference it polymorphically, without a foreign key).
type Task struct {
	ID        uint64    `gorm:"primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	Notes     string    `gorm:"type:text;not null;default:''"`
	IsDone    bool      `gorm:"not null;default:false"`
	Position  int       `gorm:"index;not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Subtasks []Subtask `gorm:"-"`
	Tags     []string  `gorm:"-"`
}

type Subtask struct {
	ID        uint64    `gorm:"primaryKey"`
	TaskID    uint64    `gorm:"index;not null"`
	Title     string    `gorm:"type:text;not null"`
	IsDone    bool      `gorm:"not null;default:false"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

// TaskTag is the normalized hashtag join row.
type TaskTag struct {
	TaskID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Tag    string `gorm:"primaryKey;type:text"`
}
