package domain

import (
	"strings"
	"time"
)

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
)

func ParseUserStatus(s string) (UserStatus, bool) {
	switch st := UserStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusBlocked:
		return st, true
	}
	return "", false
}

// User 无 DeletedAt，账号删除为硬删除
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"size:64;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         Role       `gorm:"size:16;not null;default:author" json:"role"`
	Status       UserStatus `gorm:"size:16;not null;default:active" json:"status"`
	Bio          string     `gorm:"size:500" json:"bio"`

	IsVerified                 bool       `gorm:"not null;default:false" json:"isVerified"`
	VerificationTokenHash      string     `gorm:"size:64;index" json:"-"`
	VerificationTokenExpiresAt *time.Time `json:"-"`
	ResetTokenHash             string     `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt        *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Blocked() bool { return u.Status == StatusBlocked }

// NormalizeEmail 邮箱统一小写去空格
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Author 是 users 表的公开投影，用于关联查询
type Author struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (Author) TableName() string { return "users" }

// UserSummary 管理端用户列表行
type UserSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     UserStatus `json:"status"`
	IsVerified bool       `json:"isVerified"`
	PostCount  int64      `json:"postCount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type UserFilter struct {
	Search string
	Status UserStatus
}
