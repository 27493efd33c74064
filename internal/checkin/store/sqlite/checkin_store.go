package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

func (s *Store) RecordCheckin(ctx context.Context, rec types.Checkin) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	createdMs := rec.CreatedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `
SELECT 1 FROM registrations WHERE id = ?;
`, rec.RegistrationID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "RecordCheckin resolve registration")
		}

		// Timestamps are stored at millisecond resolution; keep them strictly
		// increasing per attendee so back-to-back scans stay distinct.
		var lastMs int64
		if err := tx.QueryRowContext(ctx, `
SELECT COALESCE(MAX(created_at_ms), 0) FROM checkins WHERE registration_id = ?;
`, rec.RegistrationID).Scan(&lastMs); err != nil {
			return errors.Wrap(err, "RecordCheckin last timestamp")
		}
		if createdMs <= lastMs {
			createdMs = lastMs + 1
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO checkins(id, registration_id, subevent, created_at_ms)
VALUES (?, ?, ?, ?);
`, rec.ID, rec.RegistrationID, string(rec.Subevent), createdMs); err != nil {
			return errors.Wrap(err, "RecordCheckin insert")
		}

		if rec.Subevent != types.SubeventMain {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE registrations SET checked_in = 1 WHERE id = ?;
`, rec.RegistrationID); err != nil {
			return errors.Wrap(err, "RecordCheckin update checked_in")
		}
		return nil
	})
}

func (s *Store) ListCheckins(ctx context.Context, registrationID string) ([]types.Checkin, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, registration_id, subevent, created_at_ms
FROM checkins
WHERE registration_id = ?
ORDER BY created_at_ms DESC, rowid DESC;
`, registrationID)
	if err != nil {
		return nil, errors.Wrap(err, "ListCheckins query")
	}
	defer rows.Close()

	var out []types.Checkin
	for rows.Next() {
		var (
			c         types.Checkin
			subevent  string
			createdMs int64
		)
		if err := rows.Scan(&c.ID, &c.RegistrationID, &subevent, &createdMs); err != nil {
			return nil, errors.Wrap(err, "ListCheckins scan")
		}
		c.Subevent = types.Subevent(subevent)
		c.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "ListCheckins rows")
}
