package db

import (
	"fmt"

	"loft/internal/link"
	"loft/internal/note"
	"loft/internal/reminder"
	"loft/internal/task"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(path string) (*gorm.DB, error) {
	// Single writer at a time; concurrent polls queue instead of failing.
	// The DSN param applies to every pooled connection.
	gdb, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&task.Task{},
		&task.Subtask{},
		&task.TaskTag{},
		&note.Note{},
		&note.NoteTag{},
		&reminder.Reminder{},
		&link.Attachment{},
	); err != nil {
		return err
	}

	// Note: reminders/attachments reference tasks or notes polymorphically,
	// so there is deliberately no foreign key from them to either table.
	stmts := []string{
		`create index if not exists idx_subtasks_task on subtasks(task_id, position);`,
		`create unique index if not exists uq_task_tags on task_tags(task_id, tag);`,
		`create unique index if not exists uq_note_tags on note_tags(note_id, tag);`,
		`create index if not exists idx_reminders_poll on reminders(is_done, fired_at, due_at);`,
		`create index if not exists idx_attachments_owner on attachments(owner_type, owner_id, updated_at desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
