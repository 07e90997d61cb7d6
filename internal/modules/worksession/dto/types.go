package dto

import "time"

type Record struct {
	ID        int64
	SessionID int64
	Type      string
	Timestamp time.Time
}

type Session struct {
	ID         int64
	UserID     int64
	StartTime  time.Time
	EndTime    *time.Time
	TotalHours *float64
	Open       bool
	Paused     bool
	Records    []Record
}

// ViewOutput is a point-in-time copy of the engine state.
type ViewOutput struct {
	Phase       string
	Pending     string
	Loading     bool
	Current     *Session
	Sessions    []Session
	LastRefresh time.Time
}

type StatsOutput struct {
	TotalSessions          int
	TotalHours             float64
	AverageSessionDuration float64
}

type ExportOutput struct {
	Paths []string
}
