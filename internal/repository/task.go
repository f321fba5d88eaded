package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/dto"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/model"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TaskRepository stores tasks. Every query is scoped to the owning user.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listFilter(userID string, query dto.TaskQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if query.Status != "" {
			db = db.Where("status = ?", query.Status)
		}
		if query.Search != "" {
			pattern := "%" + likeEscaper.Replace(query.Search) + "%"
			db = db.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
		}
		return db
	}
}

// List returns one page of the user's tasks, newest first, and the total matching count.
func (r *TaskRepository) List(ctx context.Context, userID string, query dto.TaskQuery) ([]model.Task, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "ListTasks")

	start := time.Now()
	filter := listFilter(userID, query)

	var (
		tasks []model.Task
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Model(&model.Task{}).
			Scopes(filter).
			Order("created_at DESC").
			Limit(query.Limit).
			Offset(query.Offset()).
			Find(&tasks).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).
			Model(&model.Task{}).
			Scopes(filter).
			Count(&total).Error
	})

	if err := g.Wait(); err != nil {
		return nil, 0, mapGormError(ctx, err, nil, time.Since(start))
	}

	logger.DebugWithContext(ctx, "Tasks listed").
		Int("page", query.Page).
		Int("limit", query.Limit).
		Int64("total", total).
		Int("returned", len(tasks)).
		Duration(time.Since(start)).
		Log()

	return tasks, total, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "FindTask")

	var task model.Task
	start := time.Now()
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error
	if err != nil {
		return nil, mapGormError(ctx, err, apperrors.ErrTaskNotFound, time.Since(start))
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "CreateTask")

	start := time.Now()
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return mapGormError(ctx, err, nil, time.Since(start))
	}
	return nil
}

// Update writes the mutable columns of task. The row must belong to task.UserID.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "UpdateTask")

	start := time.Now()
	task.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return mapGormError(ctx, result.Error, nil, time.Since(start))
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	ctx = ctxutil.WithOperation(ctx, "repository", "DeleteTask")

	start := time.Now()
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Task{})
	if result.Error != nil {
		return mapGormError(ctx, result.Error, nil, time.Since(start))
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTaskNotFound
	}

	logger.DebugWithContext(ctx, "Task deleted").
		String("task_id", id).
		Duration(time.Since(start)).
		Log()

	return nil
}
