package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appErr "github.com/project-manager/engine/pkg/errors"
	"gorm.io/gorm"
)

// BaseRepository defines common CRUD operations.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id uint, dest *T) error
	Delete(ctx context.Context, id uint) error
}

type baseRepository[T any] struct {
	db     *gorm.DB
	entity string
}

// NewBaseRepository returns CRUD helpers for T; entity names the record in
// error messages, e.g. "Project" yields "Project not found".
func NewBaseRepository[T any](db *gorm.DB, entity string) BaseRepository[T] {
	return &baseRepository[T]{db: db, entity: entity}
}

func (r *baseRepository[T]) notFound() error {
	return appErr.NotFound(r.entity + " not found")
}

func (r *baseRepository[T]) failed(err error, op string) error {
	return appErr.Wrap(err, appErr.CodeInternal, fmt.Sprintf("%s %s failed", op, strings.ToLower(r.entity)))
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return r.failed(err, "create")
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id uint, dest *T) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.notFound()
		}
		return r.failed(err, "get")
	}
	return nil
}

func (r *baseRepository[T]) Delete(ctx context.Context, id uint) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return r.failed(res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}
