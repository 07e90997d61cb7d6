package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"punchclock/internal/modules/worksession/domain"
	worksessionout "punchclock/internal/modules/worksession/port/out"
	"punchclock/internal/platform/markdown"
)

const recordsBlock = "records"

// MarkdownNoteWriter renders one note per session. Re-exporting keeps any text
// written outside the records block and any extra frontmatter keys.
type MarkdownNoteWriter struct{}

func NewMarkdownNoteWriter() worksessionout.NoteWriter {
	return MarkdownNoteWriter{}
}

func (MarkdownNoteWriter) Write(_ context.Context, dir string, session domain.WorkSession) (string, error) {
	date := session.StartTime.Local()
	noteDir := filepath.Join(dir, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(noteDir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	path := filepath.Join(noteDir, fmt.Sprintf("%d.md", session.ID))

	note := markdown.Note{Body: fmt.Sprintf("# Session %d\n\n", session.ID)}
	if existing, err := os.ReadFile(path); err == nil {
		if note, err = markdown.Parse(string(existing)); err != nil {
			return "", fmt.Errorf("read existing note %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read existing note %s: %w", path, err)
	}

	note.Set("schema_version", domain.SchemaVersion)
	note.Set("id", session.ID)
	note.Set("user_id", session.UserID)
	note.Set("start_time", session.StartTime.Format(time.RFC3339))
	note.Set("status", status(session))
	if session.EndTime != nil {
		note.Set("end_time", session.EndTime.Format(time.RFC3339))
	} else {
		note.Delete("end_time")
	}
	if session.TotalHours != nil {
		note.Set("total_hours", *session.TotalHours)
	} else {
		note.Delete("total_hours")
	}
	note.SetBlock(recordsBlock, renderRecords(session.TimeRecords))

	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func status(session domain.WorkSession) string {
	switch {
	case !session.IsOpen():
		return "closed"
	case session.IsPaused():
		return "paused"
	default:
		return "open"
	}
}

func renderRecords(records []domain.TimeRecord) string {
	if len(records) == 0 {
		return "_no records_"
	}
	b := strings.Builder{}
	b.WriteString("| time | type |\n|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s |\n", r.Timestamp.Local().Format("15:04:05"), r.Type)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
