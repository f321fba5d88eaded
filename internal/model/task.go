package model

import (
	"time"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description *string   `gorm:"column:description;type:text"`
	Status      string    `gorm:"column:status;type:varchar(16);not null;default:PENDING;index"`
	UserID      string    `gorm:"column:user_id;type:uuid;not null;index:idx_tasks_user_created,priority:1"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_tasks_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = constants.TaskStatusPending
	}
	return nil
}

// Toggle flips a completed task back to pending and completes anything else.
func (t *Task) Toggle() {
	if t.Status == constants.TaskStatusCompleted {
		t.Status = constants.TaskStatusPending
		return
	}
	t.Status = constants.TaskStatusCompleted
}
