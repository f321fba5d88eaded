package database

import (
	"errors"

	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoUser defines the account created by SeedDemo
type DemoUser struct {
	Name     string
	Email    string
	Password string
}

// GetDemoUser returns the demo account credentials
func GetDemoUser() DemoUser {
	return DemoUser{
		Name:     "Demo User",
		Email:    "demo@taskflow.local",
		Password: "Demo@1234", // Change this in production!
	}
}

// SeedDemo creates the demo user and a few starter tasks if the user does not exist yet.
func SeedDemo(db *gorm.DB) error {
	demo := GetDemoUser()

	var existing model.User
	err := db.Where("email = ?", demo.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(demo.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:    demo.Email,
			Name:     demo.Name,
			Password: string(hashed),
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		desc := "Try toggling this task"
		tasks := []model.Task{
			{UserID: user.ID, Title: "Explore the task list", Status: constants.TaskStatusCompleted},
			{UserID: user.ID, Title: "Create your first task", Description: &desc, Status: constants.TaskStatusInProgress},
			{UserID: user.ID, Title: "Log out and back in", Status: constants.TaskStatusPending},
		}
		return tx.Create(&tasks).Error
	})
}
