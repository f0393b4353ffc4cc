package models

import (
	"time"
)

// User is an account. Email is the login identity.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// CanManageCatalog reports whether the user may write tags and ingredients.
func (u *User) CanManageCatalog() bool {
	return u.IsAdmin || u.IsStaff || u.IsSuperuser
}

// Follow is a subscription of User to Author.
type Follow struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_follow_user_author"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_follow_user_author;index"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}
