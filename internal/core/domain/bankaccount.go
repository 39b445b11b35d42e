package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalAccount is the single payout destination configured for a
// user. It is current-state configuration, not a log: at most one row
// per user, overwritten on update. Exactly which regional code fields
// are set depends on the user's bank (IFSC for India, IBAN/BIC for EU).
type WithdrawalAccount struct {
	UserID        uuid.UUID `json:"user_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	IFSCCode      string    `json:"ifsc_code,omitempty"`
	IBAN          string    `json:"iban,omitempty"`
	BIC           string    `json:"bic,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
