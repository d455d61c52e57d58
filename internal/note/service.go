package note

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
	Body  string
}

type UpdateInput struct {
	Title *string
	Body  *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Note, error) {
	var n Note

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		if err := tx.Model(&Note{}).Select("coalesce(max(position), -1)").Scan(&maxPos).Error; err != nil {
			return err
		}

		n = Note{Title: in.Title, Body: in.Body, Position: maxPos + 1}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}
		return replaceTags(tx, n.ID, n.Title+" "+n.Body)
	})
	if err != nil {
		return Note{}, err
	}
	return s.Get(ctx, n.ID)
}

func (s *Service) Get(ctx context.Context, id uint64) (Note, error) {
	var n Note
	if err := s.DB.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	if err := s.loadTags(ctx, &n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (Note, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n Note
		if err := tx.First(&n, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		retag := false
		if in.Title != nil && *in.Title != n.Title {
			n.Title = *in.Title
			retag = true
		}
		if in.Body != nil && *in.Body != n.Body {
			n.Body = *in.Body
			retag = true
		}
		n.UpdatedAt = time.Now()

		if err := tx.Save(&n).Error; err != nil {
			return err
		}
		if retag {
			return replaceTags(tx, n.ID, n.Title+" "+n.Body)
		}
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the note and its tag rows only; reminders and link
// attachments pointing at it stay.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Note{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("note_id = ?", id).Delete(&NoteTag{}).Error
	})
}

func (s *Service) List(ctx context.Context, tag string) ([]Note, error) {
	q := s.DB.WithContext(ctx).Model(&Note{})

	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		q = q.Where("id in (select note_id from note_tags where tag = ?)", tag)
	}

	var rows []Note
	if err := q.Order("position asc, id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		if err := s.loadTags(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *Service) loadTags(ctx context.Context, n *Note) error {
	return s.DB.WithContext(ctx).Model(&NoteTag{}).
		Where("note_id = ?", n.ID).
		Order("tag asc").
		Pluck("tag", &n.Tags).Error
}

func replaceTags(tx *gorm.DB, noteID uint64, content string) error {
	if err := tx.Where("note_id = ?", noteID).Delete(&NoteTag{}).Error; err != nil {
		return err
	}
	for _, tg := range tags.Extract(content) {
		if err := tx.Create(&NoteTag{NoteID: noteID, Tag: tg}).Error; err != nil {
			return err
		}
	}
	return nil
}
