package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this RUT already exists")
)

type UserRepo struct {
	db *gorm.DB
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepo) GetByRUT(ctx context.Context, rut string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("rut = ?", rut).First(&u).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &u, nil
}

func (r *UserRepo) ExistsByRUT(ctx context.Context, rut string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("rut = ?", rut).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordLogin resets the failure counter on success. On failure it increments
// the counter and locks the account once maxFailures is reached.
func (r *UserRepo) RecordLogin(ctx context.Context, id uuid.UUID, success bool, maxFailures int, lockFor time.Duration) error {
	now := time.Now().UTC()
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id)

	if success {
		return q.Updates(map[string]any{
			"failed_login_count": 0,
			"locked_until":       nil,
			"last_login_at":      now,
		}).Error
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.Select("id", "failed_login_count").First(&u, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		updates := map[string]any{"failed_login_count": u.FailedLoginCount + 1}
		if u.FailedLoginCount+1 >= maxFailures {
			updates["locked_until"] = now.Add(lockFor)
			updates["failed_login_count"] = 0
		}
		if err := tx.Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("recording failed login: %w", err)
		}
		return nil
	})
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
