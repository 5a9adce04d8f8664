package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// Staff is a school staff account. Phone is the login key and is unique
// across the system. Password holds the bcrypt hash and is never
// serialized to JSON.
type Staff struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Phone     string    `json:"sdt" gorm:"column:sdt;not null;uniqueIndex"`
	Name      string    `json:"name"`
	Password  string    `json:"-" gorm:"not null"`
	Role      Role      `json:"role" gorm:"not null;default:teacher"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims is the JWT payload issued at login. It carries no PIN material.
type Claims struct {
	UserID string `json:"id"`
	Phone  string `json:"sdt"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Phone    string `json:"sdt" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  Staff  `json:"user"`
}
