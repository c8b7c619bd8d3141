package models

import "time"

type Club struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	ShortName      string    `json:"short_name"`
	Slug           string    `json:"slug"`
	OwnerID        *int      `json:"owner_id,omitempty"`
	LogoKey        *string   `json:"-"`
	LogoURL        *string   `json:"logo_url,omitempty"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Website        string    `json:"website"`
	LicenseNumber  string    `json:"license_number"`
	FoundedYear    *int      `json:"founded_year,omitempty"`
	IsActive       bool      `json:"is_active"`
	TeamsCount     int       `json:"teams_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Club) OwningClubOwner() *int {
	return c.OwnerID
}
