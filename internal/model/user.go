package model

import "time"

// User roles
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User represents the user model stored in the database
type User struct {
	ID        uint      `json:"user_id" gorm:"primaryKey;column:user_id"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:'client'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
