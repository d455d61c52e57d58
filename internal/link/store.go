package link

import (
	"context"
	"errors"

	"loft/internal/target"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	DB *gorm.DB
}

func (s *Store) Create(ctx context.Context, a *Attachment) error {
	return s.DB.WithContext(ctx).Create(a).Error
}

func (s *Store) Get(ctx context.Context, id uint64) (Attachment, error) {
	var a Attachment
	if err := s.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Attachment{}, ErrNotFound
		}
		return Attachment{}, err
	}
	return a, nil
}

func (s *Store) ListByOwner(ctx context.Context, owner target.Ref) ([]Attachment, error) {
	var rows []Attachment
	err := s.DB.WithContext(ctx).
		Where("owner_type = ? and owner_id = ?", owner.Kind, owner.ID).
		Order("updated_at desc, id desc").
		Find(&rows).Error
	return rows, err
}

func (s *Store) Delete(ctx context.Context, id uint64) error {
	res := s.DB.WithContext(ctx).Delete(&Attachment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
