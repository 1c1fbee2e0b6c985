package models

import (
	"github.com/google/uuid"
)

// assignID fills a zero primary key before insert. IDs are generated in the
// process so the same schema works on sqlite and postgres.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Models lists every persisted type, used by tests that build schemas from structs.
func Models() []any {
	return []any{
		&Event{},
		&ProductType{},
		&Product{},
		&Promo{},
		&Transaction{},
		&TransactionItem{},
		&ExchangeRate{},
	}
}
