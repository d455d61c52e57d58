package target

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("target not found")
	ErrInvalidKind = errors.New("invalid target type")
	ErrInvalidID   = errors.New("invalid target id")
)

// Kind discriminates the two tables a Ref may point into.
type Kind string

const (
	KindTask Kind = "TASK"
	KindNote Kind = "NOTE"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindTask:
		return KindTask, nil
	case KindNote:
		return KindNote, nil
	default:
		return "", ErrInvalidKind
	}
}

// Ref names a task or a note without a foreign key. A Ref is only checked
// against the underlying table when the row holding it is created; the
// referenced task/note may be deleted later, leaving the Ref dangling.
type Ref struct {
	Kind Kind
	ID   uint64
}

type Resolver struct {
	DB *gorm.DB
}

// Resolve reports whether ref currently names a live row. Creation-time gate
// only; it has no side effects.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) error {
	if ref.ID == 0 {
		return ErrInvalidID
	}

	var table string
	switch ref.Kind {
	case KindTask:
		table = "tasks"
	case KindNote:
		table = "notes"
	default:
		return ErrInvalidKind
	}

	var n int64
	if err := r.DB.WithContext(ctx).Table(table).Where("id = ?", ref.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
