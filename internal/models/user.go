package models

import (
	"fmt"
	"time"
)

type UserRole string

const (
	UserRoleUser    UserRole = "user"
	UserRoleAdmin   UserRole = "admin"
	UserRolePremium UserRole = "premium"
	UserRoleElite   UserRole = "elite"
)

var userRoles = map[UserRole]struct{}{
	UserRoleUser:    {},
	UserRoleAdmin:   {},
	UserRolePremium: {},
	UserRoleElite:   {},
}

func ParseUserRole(s string) (UserRole, error) {
	role := UserRole(s)
	if _, ok := userRoles[role]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// SocialMediaLinks is stored as a JSON document on the user row.
type SocialMediaLinks struct {
	YoutubeURL   string `json:"youtubeUrl,omitempty"`
	InstagramURL string `json:"instagramUrl,omitempty"`
	TwitterURL   string `json:"twitterUrl,omitempty"`
	FacebookURL  string `json:"facebookUrl,omitempty"`
	LinkedinURL  string `json:"linkedinUrl,omitempty"`
}

type User struct {
	ID               string           `gorm:"primaryKey;type:varchar(27)"`
	Email            string           `gorm:"uniqueIndex;not null"`
	PasswordHash     string           `gorm:"not null"`
	Fullname         string           `gorm:"not null"`
	Role             UserRole         `gorm:"type:varchar(16);not null"`
	IsActive         bool             `gorm:"not null"`
	SocialMediaLinks SocialMediaLinks `gorm:"serializer:json"`
	Restaurants      []Restaurant     `gorm:"foreignKey:UserID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

// RefreshToken is the server-side record of an issued refresh token. The
// unique index on UserID enforces a single live session per user.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:varchar(27)"`
	Token     string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"uniqueIndex;not null;type:varchar(27)"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
