package models

import (
	"github.com/google/uuid"
)

// assignID fills a missing primary key client-side so inserts behave the
// same on postgres and sqlite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every model, in dependency order, for AutoMigrate in tests and dev.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Item{},
		&ShoppingList{},
		&ShoppingListItem{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}

