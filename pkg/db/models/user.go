package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the consumer view of an account: identity plus the default
// replenishment horizon.
type User struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email                string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name                 string    `gorm:"column:name;type:text;not null"`
	CriticalQuantityDays int       `gorm:"column:critical_quantity_days;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
