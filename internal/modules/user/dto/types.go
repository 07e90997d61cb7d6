package dto

import "time"

type UserOutput struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UpdateInput struct {
	ID    int64
	Name  *string
	Email *string
	Role  *string
}

type ChangePasswordInput struct {
	ID              int64
	CurrentPassword string
	NewPassword     string
}

type StatsOutput struct {
	TotalSessions          int
	TotalHours             float64
	AverageSessionDuration float64
	LastSession            *time.Time
}
