package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Stats struct {
	TotalSessions          int        `json:"totalSessions"`
	TotalHours             float64    `json:"totalHours"`
	AverageSessionDuration float64    `json:"averageSessionDuration"`
	LastSession            *time.Time `json:"lastSession"`
}

// Changes carries only the fields an update should touch.
type Changes struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Role == nil
}

// NormalizeRole returns "" for anything other than USER or ADMIN.
func NormalizeRole(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	default:
		return ""
	}
}
