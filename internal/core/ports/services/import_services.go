package services

import (
	"context"

	"github.com/SscSPs/fireledger/internal/dto"
)

// ImportSvc stores statement rows as journals.
type ImportSvc interface {
	// ImportRows stores each row in its own transaction. It aborts on configuration errors only,
	// returning the report of the rows handled so far together with the error.
	ImportRows(ctx context.Context, userID string, req dto.ImportRowsRequest) (*dto.ImportResponse, error)
}
