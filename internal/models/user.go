// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `json:"userId" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string         `json:"name" gorm:"size:100;not null"`
	LastName     string         `json:"lastName" gorm:"size:100;default:'lastName'"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"`
	Role         UserRole       `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Location     string         `json:"location" gorm:"size:255;default:'my city'"`
	Birthday     *time.Time     `json:"birthday,omitempty"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	Timestamps
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&u.ID)
	return nil
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
