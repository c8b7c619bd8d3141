package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleStaff  UserRole = "staff"
	RoleParent UserRole = "parent"
	RoleViewer UserRole = "viewer"
	// RoleCoach хранится в базе, но прав как отдельная роль не даёт:
	// тренер определяется по закреплённым за ним командам.
	RoleCoach UserRole = "coach"
)

// Registrable сообщает, можно ли выбрать роль при регистрации.
func (r UserRole) Registrable() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleParent, RoleViewer:
		return true
	}
	return false
}

func (r UserRole) Known() bool {
	return r.Registrable() || r == RoleCoach
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	Role         UserRole  `json:"role"`
	AvatarKey    *string   `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Notifications NotificationSettings `json:"notifications"`
}

type NotificationSettings struct {
	MatchUpdates   bool `json:"match_updates"`
	TournamentNews bool `json:"tournament_news"`
	TeamNews       bool `json:"team_news"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
