package models

import "time"

type Restaurant struct {
	ID          string  `gorm:"primaryKey;type:varchar(27)"`
	UserID      string  `gorm:"index;not null;type:varchar(27)"`
	Name        string  `gorm:"not null"`
	Address     string  `gorm:"not null"`
	PhoneNumber *string `gorm:"uniqueIndex"`
	Email       string  `gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Restaurant) TableName() string {
	return "restaurants"
}
