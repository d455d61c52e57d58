package reminder

import (
	"context"
	"errors"
	"time"

	"loft/internal/logging"
	"loft/internal/target"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// errLostRace aborts a poll whose selected rows were stamped by a competing
// poll between read and write. The transaction rolls back and the caller gets
// an empty batch; the winner already owns the rows.
var errLostRace = errors.New("due claim lost race")

const (
	// PollDue result-set bounds.
	minPollLimit = 1
	maxPollLimit = 50
)

type Service struct {
	DB       *gorm.DB
	Resolver *target.Resolver
}

type CreateInput struct {
	Target  target.Ref
	DueAt   time.Time
	Message string
}

type UpdateInput struct {
	DueAt   *time.Time
	Message *string
	IsDone  *bool
}

// Create persists a new armed reminder. The target must resolve now; it is
// never re-checked afterwards.
func (s *Service) Create(ctx context.Context, in CreateInput) (Reminder, error) {
	if err := s.Resolver.Resolve(ctx, in.Target); err != nil {
		return Reminder{}, err
	}

	r := Reminder{
		TargetType: in.Target.Kind,
		TargetID:   in.Target.ID,
		DueAt:      in.DueAt,
		Message:    in.Message,
	}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Update applies a partial edit. Changing DueAt on a row that ends up not
// done re-arms it by clearing FiredAt; marking a row done never synthesizes
// a fire time.
func (s *Service) Update(ctx context.Context, id uint64, in UpdateInput) (Reminder, error) {
	var r Reminder

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		dueChanged := false
		if in.DueAt != nil && !in.DueAt.Equal(r.DueAt) {
			r.DueAt = *in.DueAt
			dueChanged = true
		}
		if in.Message != nil {
			r.Message = *in.Message
		}
		if in.IsDone != nil {
			r.IsDone = *in.IsDone
		}
		if dueChanged && !r.IsDone {
			r.FiredAt = nil
		}

		return tx.Save(&r).Error
	})
	if err != nil {
		return Reminder{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, includeDone bool) ([]Reminder, error) {
	q := s.DB.WithContext(ctx).Model(&Reminder{})
	if !includeDone {
		q = q.Where("is_done = ?", false)
	}

	var rows []Reminder
	err := q.Order("due_at asc, id asc").Find(&rows).Error
	return rows, err
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	res := s.DB.WithContext(ctx).Delete(&Reminder{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PollDue claims every reminder due at now, up to limit, stamping FiredAt in
// the same transaction that selected it. Two polls racing on the same due set
// can therefore never both return the same reminder: whichever transaction
// commits first owns the rows, and the guarded update keeps a claimed row
// from being claimed twice.
func (s *Service) PollDue(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	if limit < minPollLimit {
		limit = minPollLimit
	}
	if limit > maxPollLimit {
		limit = maxPollLimit
	}

	var due []Reminder
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("is_done = ? and fired_at is null and due_at <= ?", false, now).
			Order("due_at asc, id asc").
			Limit(limit).
			Find(&due).Error; err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uint64, 0, len(due))
		for _, r := range due {
			ids = append(ids, r.ID)
		}

		res := tx.Model(&Reminder{}).
			Where("id in ? and fired_at is null", ids).
			Update("fired_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return errLostRace
		}
		return nil
	})
	if errors.Is(err, errLostRace) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Rows were selected before the stamp; reflect the claim on the copies
	// handed to the caller.
	for i := range due {
		t := now
		due[i].FiredAt = &t
	}

	if len(due) > 0 {
		logging.Get().WithFields(map[string]interface{}{
			"count": len(due),
			"now":   now,
		}).Info("reminders fired")
	}
	return due, nil
}
