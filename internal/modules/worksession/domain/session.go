package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const SchemaVersion = 1

type RecordType string

const (
	RecordEntry      RecordType = "ENTRY"
	RecordExit       RecordType = "EXIT"
	RecordPauseStart RecordType = "PAUSE_START"
	RecordPauseEnd   RecordType = "PAUSE_END"
)

var recordAliases = map[string]RecordType{
	"ENTRY":        RecordEntry,
	"ENTRADA":      RecordEntry,
	"EXIT":         RecordExit,
	"SAIDA":        RecordExit,
	"PAUSE_START":  RecordPauseStart,
	"PAUSA_INICIO": RecordPauseStart,
	"PAUSE_END":    RecordPauseEnd,
	"PAUSA_FIM":    RecordPauseEnd,
}

// ParseRecordType maps both the canonical names and the server's legacy names.
// Unknown tags are kept verbatim.
func ParseRecordType(raw string) RecordType {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if t, ok := recordAliases[key]; ok {
		return t
	}
	return RecordType(key)
}

func (t *RecordType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode record type: %w", err)
	}
	*t = ParseRecordType(raw)
	return nil
}

type TimeRecord struct {
	ID        int64      `json:"id"`
	SessionID int64      `json:"sessionId"`
	Type      RecordType `json:"recordType"`
	Timestamp time.Time  `json:"timestamp"`
}

func (r *TimeRecord) UnmarshalJSON(data []byte) error {
	type plain TimeRecord
	aux := struct {
		plain
		Alt RecordType `json:"type"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = TimeRecord(aux.plain)
	if r.Type == "" {
		r.Type = aux.Alt
	}
	return nil
}

// WorkSession is open while EndTime is nil.
type WorkSession struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"userId"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	TotalHours  *float64     `json:"totalHours,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	TimeRecords []TimeRecord `json:"timeRecords"`
}

func (s WorkSession) IsOpen() bool {
	return s.EndTime == nil
}

// IsPaused reports whether the latest PAUSE_START has no later PAUSE_END.
func (s WorkSession) IsPaused() bool {
	var lastStart time.Time
	seen := false
	for _, r := range s.TimeRecords {
		if r.Type == RecordPauseStart && (!seen || r.Timestamp.After(lastStart)) {
			lastStart = r.Timestamp
			seen = true
		}
	}
	if !seen {
		return false
	}
	for _, r := range s.TimeRecords {
		if r.Type == RecordPauseEnd && !r.Timestamp.Before(lastStart) {
			return false
		}
	}
	return true
}

func (s WorkSession) Clone() WorkSession {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	if s.TotalHours != nil {
		hours := *s.TotalHours
		out.TotalHours = &hours
	}
	out.TimeRecords = append([]TimeRecord(nil), s.TimeRecords...)
	return out
}

type Stats struct {
	TotalSessions          int     `json:"totalSessions"`
	TotalHours             float64 `json:"totalHours"`
	AverageSessionDuration float64 `json:"averageSessionDuration"`
}

// TodayRecords flattens the records of every session that started on now's
// local calendar day, oldest first.
func TodayRecords(sessions []WorkSession, now time.Time) []TimeRecord {
	loc := now.Location()
	y, m, d := now.Date()
	out := []TimeRecord{}
	for _, s := range sessions {
		sy, sm, sd := s.StartTime.In(loc).Date()
		if sy != y || sm != m || sd != d {
			continue
		}
		out = append(out, s.TimeRecords...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
