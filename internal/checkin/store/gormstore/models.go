package gormstore

import (
	"time"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/types"
)

type registrationRow struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	Name      string    `gorm:"not null;type:varchar(255);index"`
	Email     string    `gorm:"not null;default:''"`
	Phone     string    `gorm:"not null;default:''"`
	Role      string    `gorm:"not null;default:''"`
	CheckedIn bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

func (registrationRow) TableName() string { return "registrations" }

func (r registrationRow) toType() types.Registration {
	return types.Registration{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
		CheckedIn: r.CheckedIn,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type checkinRow struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)"`
	RegistrationID string    `gorm:"not null;type:varchar(64);index:idx_checkins_registration_time,priority:1"`
	Subevent       string    `gorm:"not null;type:varchar(32)"`
	CreatedAt      time.Time `gorm:"not null;index:idx_checkins_registration_time,priority:2,sort:desc"`

	Registration registrationRow `gorm:"foreignKey:RegistrationID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (checkinRow) TableName() string { return "checkins" }

func (c checkinRow) toType() types.Checkin {
	return types.Checkin{
		ID:             c.ID,
		RegistrationID: c.RegistrationID,
		Subevent:       types.Subevent(c.Subevent),
		CreatedAt:      c.CreatedAt.UTC(),
	}
}

var models = []any{
	&registrationRow{},
	&checkinRow{},
}
