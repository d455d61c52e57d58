package task

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type SubtaskUpdateInput struct {
	Title  *string
	IsDone *bool
}

func (s *Service) CreateSubtask(ctx context.Context, taskID uint64, title string) (Subtask, error) {
	var st Subtask

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t Task
		if err := tx.First(&t, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var maxPos int
		if err := tx.Model(&Subtask{}).
			Where("task_id = ?", taskID).
			Select("coalesce(max(position), -1)").
			Scan(&maxPos).Error; err != nil {
			return err
		}

		st = Subtask{TaskID: taskID, Title: title, Position: maxPos + 1}
		return tx.Create(&st).Error
	})
	return st, err
}

func (s *Service) UpdateSubtask(ctx context.Context, id uint64, in SubtaskUpdateInput) (Subtask, error) {
	var st Subtask
	if err := s.DB.WithContext(ctx).First(&st, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Subtask{}, ErrNotFound
		}
		return Subtask{}, err
	}

	if in.Title != nil {
		st.Title = *in.Title
	}
	if in.IsDone != nil {
		st.IsDone = *in.IsDone
	}
	if err := s.DB.WithContext(ctx).Save(&st).Error; err != nil {
		return Subtask{}, err
	}
	return st, nil
}

// ReorderSubtask moves a subtask to the given position among its siblings and
// renumbers the rest. Positions are scoped per parent task.
func (s *Service) ReorderSubtask(ctx context.Context, id uint64, position int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st Subtask
		if err := tx.First(&st, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&Subtask{}).Where("task_id = ?", st.TaskID).Count(&count).Error; err != nil {
			return err
		}
		if position < 0 {
			position = 0
		}
		if position > int(count)-1 {
			position = int(count) - 1
		}
		if position == st.Position {
			return nil
		}

		if position > st.Position {
			if err := tx.Exec(`update subtasks set position = position - 1 where task_id = ? and position > ? and position <= ?`,
				st.TaskID, st.Position, position).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Exec(`update subtasks set position = position + 1 where task_id = ? and position >= ? and position < ?`,
				st.TaskID, position, st.Position).Error; err != nil {
				return err
			}
		}
		return tx.Model(&Subtask{}).Where("id = ?", id).Update("position", position).Error
	})
}

func (s *Service) DeleteSubtask(ctx context.Context, id uint64) error {
	res := s.DB.WithContext(ctx).Delete(&Subtask{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) ListSubtasks(ctx context.Context, taskID uint64) ([]Subtask, error) {
	var t Task
	if err := s.DB.WithContext(ctx).First(&t, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rows []Subtask
	err := s.DB.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("position asc, id asc").
		Find(&rows).Error
	return rows, err
}
