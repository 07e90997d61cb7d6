package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"punchclock/internal/modules/worksession/domain"
	worksessionout "punchclock/internal/modules/worksession/port/out"
	"punchclock/internal/platform/tx"
)

// SQLiteViewStore keeps the last cached view in two tables: a single header
// row (current session, refresh time) and the ordered session list.
type SQLiteViewStore struct {
	db *sql.DB
	tx tx.Manager
}

func NewSQLiteViewStore(ctx context.Context, db *sql.DB) (worksessionout.ViewStore, error) {
	store := &SQLiteViewStore{db: db, tx: tx.NewSQLManager(db)}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteViewStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_view (
  slot INTEGER PRIMARY KEY CHECK (slot = 1),
  current_json TEXT,
  last_refresh TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session_view_sessions (
  position INTEGER PRIMARY KEY,
  session_id INTEGER NOT NULL,
  payload TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session view tables: %w", err)
	}
	return nil
}

func (s *SQLiteViewStore) Save(ctx context.Context, view domain.View) error {
	var current sql.NullString
	if view.Current != nil {
		payload, err := json.Marshal(view.Current)
		if err != nil {
			return fmt.Errorf("marshal current session: %w", err)
		}
		current = sql.NullString{String: string(payload), Valid: true}
	}
	rows := make([][]byte, 0, len(view.Sessions))
	for _, session := range view.Sessions {
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session %d: %w", session.ID, err)
		}
		rows = append(rows, payload)
	}

	return s.tx.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_view_sessions`); err != nil {
			return fmt.Errorf("reset session rows: %w", err)
		}
		for i, payload := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_view_sessions (position, session_id, payload) VALUES (?, ?, ?)`,
				i, view.Sessions[i].ID, string(payload),
			); err != nil {
				return fmt.Errorf("insert session %d: %w", view.Sessions[i].ID, err)
			}
		}
		const header = `
INSERT INTO session_view (slot, current_json, last_refresh, updated_at) VALUES (1, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
  current_json=excluded.current_json,
  last_refresh=excluded.last_refresh,
  updated_at=excluded.updated_at;
`
		if _, err := tx.ExecContext(ctx, header,
			current,
			view.LastRefresh.Format(time.RFC3339Nano),
			time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("write session view: %w", err)
		}
		return nil
	})
}

func (s *SQLiteViewStore) Load(ctx context.Context) (domain.View, bool, error) {
	var (
		current     sql.NullString
		lastRefresh string
	)
	err := s.db.QueryRowContext(ctx, `SELECT current_json, last_refresh FROM session_view WHERE slot = 1`).Scan(&current, &lastRefresh)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.View{}, false, nil
	}
	if err != nil {
		return domain.View{}, false, fmt.Errorf("read session view: %w", err)
	}

	view := domain.View{Sessions: []domain.WorkSession{}}
	if view.LastRefresh, err = time.Parse(time.RFC3339Nano, lastRefresh); err != nil {
		return domain.View{}, false, fmt.Errorf("parse last refresh: %w", err)
	}
	if current.Valid {
		session := domain.WorkSession{}
		if err := json.Unmarshal([]byte(current.String), &session); err != nil {
			return domain.View{}, false, fmt.Errorf("decode current session: %w", err)
		}
		view.Current = &session
	}

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM session_view_sessions ORDER BY position`)
	if err != nil {
		return domain.View{}, false, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return domain.View{}, false, fmt.Errorf("scan session: %w", err)
		}
		session := domain.WorkSession{}
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			return domain.View{}, false, fmt.Errorf("decode session: %w", err)
		}
		view.Sessions = append(view.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return domain.View{}, false, fmt.Errorf("iterate sessions: %w", err)
	}
	return view, true, nil
}

func (s *SQLiteViewStore) Clear(ctx context.Context) error {
	return s.tx.Within(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_view_sessions`); err != nil {
			return fmt.Errorf("clear session rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_view`); err != nil {
			return fmt.Errorf("clear session view: %w", err)
		}
		return nil
	})
}
