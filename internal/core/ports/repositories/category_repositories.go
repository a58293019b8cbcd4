package repositories

import (
	"context"

	"github.com/SscSPs/fireledger/internal/core/domain"
)

// CategoryRepositoryFacade defines the operations on categories.
type CategoryRepositoryFacade interface {
	FindCategoryByID(ctx context.Context, userID string, categoryID string) (*domain.Category, error)
	FindCategoriesByName(ctx context.Context, userID string, name string) ([]domain.Category, error)
	SaveCategory(ctx context.Context, category domain.Category) error
}
