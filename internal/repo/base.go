package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by domain repositories. It carries the connection a
// repository was built with, which is a transaction after WithTx.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Bind returns a copy of the base pointing at tx. A nil tx keeps the current
// connection, which lets stubbed transaction runners pass nil.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}
