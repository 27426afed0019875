package models

import "time"

// Role is the role of a user
type Role string

// Role constants
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Locale constants
const (
	LocaleFR = "fr"
	LocaleEN = "en"
	LocaleAR = "ar"
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	Branch       string    `json:"branch"`
	Locale       string    `json:"locale"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=100" example:"Amina Benali"`
	Email    string `json:"email" validate:"required,email,max=255" example:"amina@example.dz"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"motdepasse123"`
	Branch   string `json:"branch" validate:"max=100" example:"Sciences expérimentales"`
	Locale   string `json:"locale" validate:"omitempty,oneof=fr en ar" example:"fr"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"amina@example.dz"`
	Password string `json:"password" validate:"required" example:"motdepasse123"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Branch string `json:"branch"`
	Token  string `json:"token"`
}

// TeacherListItem represents a teacher in public lists
type TeacherListItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
