// Package testutil provides in-memory stores for service and handler tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Payphone-Digital/taskflow/internal/dto"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/model"
	"github.com/google/uuid"
)

// UserStore is an in-memory credential store. Set Err to make every call fail,
// or SwapErr to fail only slot swaps.
type UserStore struct {
	mu      sync.Mutex
	byID    map[string]model.User
	byEmail map[string]string
	Err     error
	SwapErr error
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	user, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, taken := s.byEmail[user.Email]; taken {
		return apperrors.ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) UpdateRefreshToken(_ context.Context, id string, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	user, ok := s.byID[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if token != nil {
		v := *token
		token = &v
	}
	user.RefreshToken = token
	s.byID[id] = user
	return nil
}

func (s *UserStore) SwapRefreshToken(_ context.Context, id string, expected, next *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.SwapErr != nil {
		return s.SwapErr
	}

	user, ok := s.byID[id]
	if !ok || !sameSlot(user.RefreshToken, expected) {
		return apperrors.ErrSessionConflict
	}
	if next != nil {
		v := *next
		next = &v
	}
	user.RefreshToken = next
	s.byID[id] = user
	return nil
}

func sameSlot(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Slot returns the stored refresh token for id, or nil.
func (s *UserStore) Slot(id string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id].RefreshToken
}

// Delete removes a user, simulating an account deleted behind the service's back.
func (s *UserStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byEmail, s.byID[id].Email)
	delete(s.byID, id)
}

// TaskStore is an in-memory task store with the same ownership scoping as the
// gorm repository.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	clock time.Time
	Err   error
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]model.Task),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic (must hold lock)
func (s *TaskStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *TaskStore) List(_ context.Context, userID string, query dto.TaskQuery) ([]model.Task, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}

	search := strings.ToLower(query.Search)
	var matched []model.Task
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if query.Status != "" && t.Status != query.Status {
			continue
		}
		if search != "" {
			inTitle := strings.Contains(strings.ToLower(t.Title), search)
			inDesc := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
			if !inTitle && !inDesc {
				continue
			}
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *TaskStore) FindByID(_ context.Context, userID, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, apperrors.ErrTaskNotFound
	}
	return &t, nil
}

func (s *TaskStore) Create(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if err := task.BeforeCreate(nil); err != nil {
		return err
	}
	now := s.tick()
	task.CreatedAt, task.UpdatedAt = now, now
	s.tasks[task.ID] = *task
	return nil
}

func (s *TaskStore) Update(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return apperrors.ErrTaskNotFound
	}
	task.UpdatedAt = s.tick()
	s.tasks[task.ID] = *task
	return nil
}

func (s *TaskStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return apperrors.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}
