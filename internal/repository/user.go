package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/model"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"gorm.io/gorm"
)

// UserRepository is the credential store backed by gorm.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByEmail")

	var user model.User
	start := time.Now()
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, mapGormError(ctx, err, apperrors.ErrUserNotFound, time.Since(start))
	}

	logger.DebugWithContext(ctx, "User retrieved by email").
		String("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindByID")

	var user model.User
	start := time.Now()
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, mapGormError(ctx, err, apperrors.ErrUserNotFound, time.Since(start))
	}

	return &user, nil
}

// Create inserts user. A unique violation on email is reported as ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "Create")

	start := time.Now()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.WarnWithContext(ctx, "Duplicate email on insert").
				Duration(time.Since(start)).
				Log()
			return apperrors.ErrEmailTaken
		}
		return mapGormError(ctx, err, nil, time.Since(start))
	}

	logger.DebugWithContext(ctx, "User created").
		String("user_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return nil
}

// UpdateRefreshToken overwrites the session slot; nil clears it.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateRefreshToken")

	start := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if result.Error != nil {
		return mapGormError(ctx, result.Error, nil, time.Since(start))
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token slot updated").
		String("user_id", id).
		Bool("cleared", token == nil).
		Duration(time.Since(start)).
		Log()

	return nil
}

// SwapRefreshToken replaces the slot only if it still holds expected (nil meaning
// empty). A slot changed in between yields ErrSessionConflict.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, id string, expected, next *string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "SwapRefreshToken")

	start := time.Now()
	query := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id)
	if expected == nil {
		query = query.Where("refresh_token IS NULL")
	} else {
		query = query.Where("refresh_token = ?", *expected)
	}

	result := query.Update("refresh_token", next)
	if result.Error != nil {
		return mapGormError(ctx, result.Error, nil, time.Since(start))
	}
	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "Refresh token slot changed concurrently").
			String("user_id", id).
			Duration(time.Since(start)).
			Log()
		return apperrors.ErrSessionConflict
	}

	return nil
}

// mapGormError converts gorm errors into domain errors. notFound may be nil when a
// missing row is not expected.
func mapGormError(ctx context.Context, err error, notFound *apperrors.DomainError, elapsed time.Duration) error {
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	logger.ErrorWithContext(ctx, "Database query failed").
		Duration(elapsed).
		Err(err).
		Log()
	return apperrors.WrapError(apperrors.ErrInternal, err)
}
