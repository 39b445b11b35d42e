package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds a user's current wallet balance in integer minor units
// (e.g. cents). The balance column is the authoritative aggregate; it is
// mutated only together with a Transaction insert, never independently.
// Accounts are created implicitly on first funding and never deleted.
type Account struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"` // minor units, >= 0
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
