package service

import (
	"context"
	"strings"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/dto"
	"github.com/Payphone-Digital/taskflow/internal/model"
	ctxutil "github.com/Payphone-Digital/taskflow/pkg/context"
	"github.com/Payphone-Digital/taskflow/pkg/logger"
)

// TaskStore persists tasks. Implementations must scope every lookup by userID.
type TaskStore interface {
	List(ctx context.Context, userID string, query dto.TaskQuery) ([]model.Task, int64, error)
	FindByID(ctx context.Context, userID, id string) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, id string) error
}

type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) List(ctx context.Context, userID string, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ListTasks")

	tasks, total, err := s.tasks.List(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	resp := dto.NewTaskListResponse(tasks, query, total)
	return &resp, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*dto.TaskResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "GetTask")

	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "CreateTask")

	status := req.Status
	if status == "" {
		status = constants.TaskStatusPending
	}

	task := &model.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: trimmed(req.Description),
		Status:      status,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Task created").
		String("task_id", task.ID).
		String("status", task.Status).
		Log()

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

// Update applies the fields present in req and leaves the rest untouched.
func (s *TaskService) Update(ctx context.Context, userID, id string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "UpdateTask")

	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = trimmed(req.Description)
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	ctx = ctxutil.WithOperation(ctx, "service", "DeleteTask")

	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}

	logger.InfoWithContext(ctx, "Task deleted").
		String("task_id", id).
		Log()
	return nil
}

// Toggle flips COMPLETED back to PENDING and moves any other status to COMPLETED.
func (s *TaskService) Toggle(ctx context.Context, userID, id string) (*dto.TaskResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "service", "ToggleTask")

	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	task.Toggle()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	resp := dto.NewTaskResponse(task)
	return &resp, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
