package dto

import "github.com/SscSPs/fireledger/internal/core/domain"

// ImportRowsRequest carries statement rows to import.
type ImportRowsRequest struct {
	DefaultAccountID *string            `json:"defaultAccountID"`
	Rows             []domain.ImportRow `json:"rows" binding:"required,min=1"`
}

// ImportResponse summarizes an import run.
type ImportResponse struct {
	Stored  int                      `json:"stored"`
	Failed  int                      `json:"failed"`
	Results []domain.ImportRowResult `json:"results"`
}
