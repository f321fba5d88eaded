package model

import (
	"testing"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestTask_Toggle(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{constants.TaskStatusCompleted, constants.TaskStatusPending},
		{constants.TaskStatusPending, constants.TaskStatusCompleted},
		{constants.TaskStatusInProgress, constants.TaskStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			task := Task{Status: tt.from}
			task.Toggle()
			assert.Equal(t, tt.want, task.Status)
		})
	}
}

func TestBeforeCreate_AssignsDefaults(t *testing.T) {
	task := &Task{Title: "x"}
	assert.NoError(t, task.BeforeCreate(nil))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, constants.TaskStatusPending, task.Status)

	user := &User{ID: "fixed"}
	assert.NoError(t, user.BeforeCreate(nil))
	assert.Equal(t, "fixed", user.ID)
}
