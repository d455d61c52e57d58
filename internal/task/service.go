package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"loft/internal/tags"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Title string
	Notes string
}

type UpdateInput struct {
	Title  *string
	Notes  *string
	IsDone *bool
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Task, error) {
	var t Task

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&Task{}).Select("coalesce(max(position), -1)").Scan(&maxPos).Error; err != nil {
			return err
		}

		t = Task{Title: in.Title, Notes: in.Notes, Position: maxPos + 1}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return replaceTags(tx, t.ID, t.Title+" "+t.Notes)
	})
	if err != nil {
		return Task{}, err
	}
	return s.Get(ctx, t.ID)
}

func (s *Service) Get(ctx context.Context, id uint64) (Task, error) {
	var t Task
	if err := s.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	if err := s.loadDependents(ctx, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (Task, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Task
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		retag := false
		if in.Title != nil && *in.Title != t.Title {
			t.Title = *in.Title
			retag = true
		}
		if in.Notes != nil && *in.Notes != t.Notes {
			t.Notes = *in.Notes
			retag = true
		}
		if in.IsDone != nil {
			t.IsDone = *in.IsDone
		}
		t.UpdatedAt = time.Now()

		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		if retag {
			return replaceTags(tx, t.ID, t.Title+" "+t.Notes)
		}
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the task and its dependent rows. Reminders and link
// attachments pointing at it are left in place.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("task_id = ?", id).Delete(&Subtask{}).Error; err != nil {
			return err
		}
		return tx.Where("task_id = ?", id).Delete(&TaskTag{}).Error
	})
}

func (s *Service) List(ctx context.Context, tag string) ([]Task, error) {
	q := s.DB.WithContext(ctx).Model(&Task{})

	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		q = q.Where("id in (select task_id from task_tags where tag = ?)", tag)
	}

	var rows []Task
	if err := q.Order("position asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		if err := s.loadDependents(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Reorder moves a task to the given position and renumbers the rest.
func (s *Service) Reorder(ctx context.Context, id uint64, position int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Task
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&Task{}).Count(&count).Error; err != nil {
			return err
		}
		if position < 0 {
			position = 0
		}
		if position > int(count)-1 {
			position = int(count) - 1
		}
		if position == t.Position {
			return nil
		}

		if position > t.Position {
			if err := tx.Exec(`update tasks set position = position - 1 where position > ? and position <= ?`,
				t.Position, position).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Exec(`update tasks set position = position + 1 where position >= ? and position < ?`,
				position, t.Position).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Task{}).Where("id = ?", id).Update("position", position).Error
	})
}

func (s *Service) loadDependents(ctx context.Context, t *Task) error {
	if err := s.DB.WithContext(ctx).
		Where("task_id = ?", t.ID).
		Order("position asc, id asc").
		Find(&t.Subtasks).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&TaskTag{}).
		Where("task_id = ?", t.ID).
		Order("tag asc").
		Pluck("tag", &t.Tags).Error
}

func replaceTags(tx *gorm.DB, taskID uint64, content string) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&TaskTag{}).Error; err != nil {
		return err
	}
	for _, tg := range tags.Extract(content) {
		if err := tx.Create(&TaskTag{TaskID: taskID, Tag: tg}).Error; err != nil {
			return err
		}
	}
	return nil
}
