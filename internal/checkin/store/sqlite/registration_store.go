package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	dbpkg "github.com/BrandonDHaskell/Checkin/server/internal/db"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

// Store implements store.Store on top of SQLite. Reads go straight to db,
// writes are serialized through writer.
type Store struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func New(db *sql.DB, writer *dbpkg.Worker) *Store {
	return &Store{db: db, writer: writer}
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "sqlite ping")
}

func (s *Store) GetRegistration(ctx context.Context, id string) (types.Registration, error) {
	var (
		reg       types.Registration
		checkedIn int
		createdMs int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, name, email, phone, role, checked_in, created_at_ms
FROM registrations
WHERE id = ?;
`, id).Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Phone, &reg.Role, &checkedIn, &createdMs)

	if errors.Is(err, sql.ErrNoRows) {
		return types.Registration{}, store.ErrNotFound
	}
	if err != nil {
		return types.Registration{}, errors.Wrap(err, "GetRegistration query")
	}

	reg.CheckedIn = checkedIn == 1
	reg.CreatedAt = time.UnixMilli(createdMs).UTC()
	return reg, nil
}

// SearchRegistrations filters in Go rather than with LIKE: SQLite's
// lower()/LIKE only fold ASCII, and attendee names are not ASCII-only.
func (s *Store) SearchRegistrations(ctx context.Context, search string) ([]types.AttendeeSummary, error) {
	needle := strings.ToLower(strings.TrimSpace(search))

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, checked_in
FROM registrations
ORDER BY name ASC, id ASC;
`)
	if err != nil {
		return nil, errors.Wrap(err, "SearchRegistrations query")
	}
	defer rows.Close()

	out := []types.AttendeeSummary{}
	for rows.Next() {
		var (
			a         types.AttendeeSummary
			checkedIn int
		)
		if err := rows.Scan(&a.ID, &a.Name, &checkedIn); err != nil {
			return nil, errors.Wrap(err, "SearchRegistrations scan")
		}
		if needle != "" && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		a.CheckedIn = checkedIn == 1
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "SearchRegistrations rows")
}

func (s *Store) CreateRegistration(ctx context.Context, reg types.Registration) error {
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	var checkedIn int
	if reg.CheckedIn {
		checkedIn = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO registrations(id, name, email, phone, role, checked_in, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, reg.ID, reg.Name, reg.Email, reg.Phone, reg.Role, checkedIn, reg.CreatedAt.UTC().UnixMilli()); err != nil {
			return errors.Wrap(err, "CreateRegistration insert")
		}
		return nil
	})
}

func (s *Store) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	var v int
	if checkedIn {
		v = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE registrations SET checked_in = ? WHERE id = ?;
`, v, id)
		if err != nil {
			return errors.Wrap(err, "SetCheckedIn update")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}
