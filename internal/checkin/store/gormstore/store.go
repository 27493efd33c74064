package gormstore

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/store"
	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

// Store is a GORM-based store.Store for hosted Postgres/MySQL backends.
type Store struct {
	db *gorm.DB
}

// New connects and auto-migrates the registrations and checkins tables.
func New(cfg Config) (*Store, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewFromDB(db)
}

func NewFromDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(models...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "gorm db handle")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "gorm ping")
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) GetRegistration(ctx context.Context, id string) (types.Registration, error) {
	var row registrationRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Registration{}, store.ErrNotFound
	}
	if err != nil {
		return types.Registration{}, errors.Wrap(err, "GetRegistration")
	}
	return row.toType(), nil
}

func (s *Store) SearchRegistrations(ctx context.Context, search string) ([]types.AttendeeSummary, error) {
	q := s.db.WithContext(ctx).Model(&registrationRow{}).Select("id", "name", "checked_in")
	if needle := strings.TrimSpace(search); needle != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(needle))+"%")
	}

	var rows []registrationRow
	if err := q.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "SearchRegistrations")
	}

	out := make([]types.AttendeeSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.AttendeeSummary{ID: r.ID, Name: r.Name, CheckedIn: r.CheckedIn})
	}
	return out, nil
}

func (s *Store) CreateRegistration(ctx context.Context, reg types.Registration) error {
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	row := registrationRow{
		ID:        reg.ID,
		Name:      reg.Name,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Role:      reg.Role,
		CheckedIn: reg.CheckedIn,
		CreatedAt: reg.CreatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	return errors.Wrap(err, "CreateRegistration")
}

func (s *Store) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	res := s.db.WithContext(ctx).Model(&registrationRow{}).Where("id = ?", id).Update("checked_in", checkedIn)
	if res.Error != nil {
		return errors.Wrap(res.Error, "SetCheckedIn")
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 affected rows when the value is unchanged, so
		// confirm the row really is missing.
		var count int64
		if err := s.db.WithContext(ctx).Model(&registrationRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errors.Wrap(err, "SetCheckedIn lookup")
		}
		if count == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *Store) RecordCheckin(ctx context.Context, rec types.Checkin) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg registrationRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", rec.RegistrationID).First(&reg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "RecordCheckin resolve registration")
		}

		row := checkinRow{
			ID:             rec.ID,
			RegistrationID: rec.RegistrationID,
			Subevent:       string(rec.Subevent),
			CreatedAt:      rec.CreatedAt,
		}
		if err := tx.Omit("Registration").Create(&row).Error; err != nil {
			return errors.Wrap(err, "RecordCheckin insert")
		}

		if rec.Subevent != types.SubeventMain {
			return nil
		}
		err = tx.Model(&registrationRow{}).Where("id = ?", rec.RegistrationID).Update("checked_in", true).Error
		return errors.Wrap(err, "RecordCheckin update checked_in")
	})
}

func (s *Store) ListCheckins(ctx context.Context, registrationID string) ([]types.Checkin, error) {
	var rows []checkinRow
	err := s.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "ListCheckins")
	}

	out := make([]types.Checkin, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toType())
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
