package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePiggyBankRequest defines the data needed to create a piggy bank.
type CreatePiggyBankRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Name         string          `json:"name" binding:"required,max=255"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	StartDate    *time.Time      `json:"startDate"`
	TargetDate   *time.Time      `json:"targetDate"`
}

// UpdatePiggyBankRequest defines the data allowed for updating a piggy bank.
type UpdatePiggyBankRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=255"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	TargetDate   *time.Time       `json:"targetDate"`
}

// PiggyAmountRequest adds to or removes from a piggy bank.
type PiggyAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
